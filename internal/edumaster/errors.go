package edumaster

import (
	"errors"
	"fmt"
)

// ErrSessionExpired signals that the stored token was rejected by the API.
// Callers must clear the local session and send the user back to the login
// view when they see it.
var ErrSessionExpired = errors.New("edumaster: session expired")

// User-facing fallback copy. Server-provided messages are surfaced verbatim
// when available; these cover connectivity failures and malformed error
// bodies. The product audience is Arabic-speaking, so the copy is localized.
const (
	msgConnectionFailed = "تعذر الاتصال بالخادم. تحقق من اتصالك بالإنترنت وحاول مرة أخرى."
	msgUnexpectedError  = "حدث خطأ غير متوقع. حاول مرة أخرى لاحقاً."
)

// APIError carries the HTTP status and the server-provided (or fallback)
// user-facing message for a failed API call.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("edumaster: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("edumaster: %s", e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage extracts the localized message to show the user for err.
// API errors surface the server's message; everything else collapses to the
// generic fallback.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgUnexpectedError
}
