package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnauthorized is wrapped by every 401 response. The stored token has
// already been cleared by the time a caller sees it.
var ErrUnauthorized = errors.New("not authenticated")

// StatusError is returned when the backend responds with a non-2xx status.
// Using a typed error lets callers tell "not found" from transient failures
// without string matching.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("carbonscope api status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("carbonscope api status %d", e.StatusCode)
}

// Unwrap exposes ErrUnauthorized for 401 responses.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// IsNotFound reports whether err is a StatusError with HTTP 404.
func IsNotFound(err error) bool {
	var e *StatusError
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err stems from a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// statusError reads the FastAPI {"detail": ...} body, if any.
func statusError(resp *http.Response) error {
	e := &StatusError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			e.Detail = s
		} else {
			// validation errors come back as a list of objects
			e.Detail = string(payload.Detail)
		}
	} else {
		e.Detail = strings.TrimSpace(string(body))
	}
	return e
}
