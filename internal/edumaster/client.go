// Package edumaster is the client SDK for the remote EduMaster API. Every
// network call in the application goes through Client.do: it binds the
// session token, serializes bodies, normalizes the server's inconsistent
// response envelopes and maps rejected tokens to ErrSessionExpired.
package edumaster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// tokenHeader is the credential header the API expects. The API predates
// Authorization: Bearer and reads the raw token from this header instead.
const tokenHeader = "token"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client talks to the remote EduMaster API. The zero token value issues
// unauthenticated requests; WithToken binds a session token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	log        zerolog.Logger
}

// New creates a Client for the given API base URL.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "edumaster_client").Logger(),
	}
}

// WithToken returns a copy of the client bound to the given session token.
// The underlying http.Client is shared.
func (c *Client) WithToken(token string) *Client {
	bound := *c
	bound.token = token
	return &bound
}

// do performs a request against the API. A non-nil body is JSON-encoded.
// On success the response payload — envelope-unwrapped when unwrapEnvelope
// is set — is decoded into out (which may be nil to discard it).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, unwrapEnvelope bool) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(tokenHeader, c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("Request failed")
		return &APIError{Message: msgConnectionFailed, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return &APIError{Status: res.StatusCode, Message: msgConnectionFailed, Err: err}
	}

	if res.StatusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}

	if res.StatusCode >= 400 {
		return &APIError{Status: res.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	payload := json.RawMessage(raw)
	if unwrapEnvelope {
		payload = unwrap(payload)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// get issues an authenticated GET and decodes the unwrapped payload.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out, true)
}

// errorMessage pulls the server's message out of an error body, tolerating
// malformed JSON.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return msgUnexpectedError
}
