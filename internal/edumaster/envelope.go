package edumaster

import "encoding/json"

// envelopeKeys are the wrapper fields the API is known to nest payloads
// under, in unwrap priority order. The server is inconsistent about which
// one it uses (and occasionally nests "data" twice), so all envelope
// handling is contained here.
var envelopeKeys = []string{"data", "lessons", "exams", "questions", "users", "admins"}

// maxUnwrapDepth bounds repeated unwrapping; two levels of "data" is the
// deepest nesting observed in the wild.
const maxUnwrapDepth = 2

// unwrap peels known envelope keys off a JSON body. If the body is not an
// object, or no known key is present, the body is returned unchanged.
func unwrap(body json.RawMessage) json.RawMessage {
	for depth := 0; depth < maxUnwrapDepth; depth++ {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return body
		}

		unwrapped := false
		for _, key := range envelopeKeys {
			if inner, ok := obj[key]; ok {
				body = inner
				unwrapped = true
				break
			}
		}
		if !unwrapped {
			return body
		}
	}
	return body
}
