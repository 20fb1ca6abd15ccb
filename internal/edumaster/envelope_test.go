package edumaster

import (
	"encoding/json"
	"testing"
)

func TestUnwrapKnownEnvelopes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"data key", `{"data":{"x":1}}`, `{"x":1}`},
		{"lessons key", `{"lessons":[1,2]}`, `[1,2]`},
		{"exams key", `{"exams":[]}`, `[]`},
		{"users key", `{"users":[{"a":1}]}`, `[{"a":1}]`},
		{"double data", `{"data":{"data":{"y":2}}}`, `{"y":2}`},
		{"data wins over others", `{"data":1,"lessons":2}`, `1`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := unwrap(json.RawMessage(c.body))
			if string(got) != c.want {
				t.Errorf("unwrap(%s) = %s, want %s", c.body, got, c.want)
			}
		})
	}
}

func TestUnwrapFallback(t *testing.T) {
	// No known envelope key: body returned unchanged.
	raw := `{"exam":{"duration":30}}`
	if got := unwrap(json.RawMessage(raw)); string(got) != raw {
		t.Errorf("unwrap(%s) = %s, want unchanged", raw, got)
	}

	// Non-object bodies pass through untouched.
	for _, raw := range []string{`[1,2,3]`, `"plain"`, `42`} {
		if got := unwrap(json.RawMessage(raw)); string(got) != raw {
			t.Errorf("unwrap(%s) = %s, want unchanged", raw, got)
		}
	}
}
