package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the API.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// newError reads the server's error body. The API reports failures as
// {"error": "..."} or {"message": "..."}; validation failures may be a map
// of field to messages, which is kept verbatim.
func newError(method, path string, resp *http.Response) *Error {
	e := &Error{Method: method, Path: path, Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		e.Message = strings.TrimSpace(string(raw))
		if len(e.Message) > 200 {
			e.Message = e.Message[:200]
		}
		return e
	}
	for _, key := range []string{"error", "message", "msg"} {
		if s, ok := body[key].(string); ok {
			e.Message = s
			return e
		}
	}
	e.Message = strings.TrimSpace(string(raw))
	return e
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// API response error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsClientError reports whether err is a 4xx response.
func IsClientError(err error) bool {
	s := StatusOf(err)
	return s >= 400 && s < 500
}

// IsUnauthorized reports whether the server rejected the credential.
func IsUnauthorized(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusUnprocessableEntity
}
