// Package view holds the server-rendered HTML templates. All copy is
// Arabic and every page renders right-to-left.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var files embed.FS

//go:embed static
var static embed.FS

var funcMap = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"money": func(v float64) string {
		return fmt.Sprintf("%.2f ج.م", v)
	},
}

// Templates parses the embedded template set. Panics on a malformed
// template, which is a build defect, not a runtime condition.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcMap).ParseFS(files, "templates/*.html"))
}

// Static returns the embedded stylesheet tree, rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
