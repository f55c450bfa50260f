// Package apperr defines the sentinel error categories shared by carbonscope commands.
//
// Error taxonomy
//
//	UserError    – invalid or missing user input: a bad flag value, a simulator
//	               run without a model or region, a command that needs a session
//	               while logged out. Caught before any request is made.
//	               Exit code: 1.
//
//	ErrCancelled – the user aborted an interactive form or the browser.
//	               Exit code: 0 (not a failure).
//
// Transport failures and HTTP status errors live in package api
// (api.StatusError, api.ErrUnauthorized) and are wrapped with
// fmt.Errorf("context: %w", err) on their way up.
package apperr

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user explicitly aborts an interactive
// operation. The CLI should exit 0 rather than 1 when it sees this error.
var ErrCancelled = errors.New("operation cancelled")

// UserError represents an error caused by invalid or missing user input.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

// User creates a UserError with the given message.
func User(msg string) error { return &UserError{Message: msg} }

// Userf creates a formatted UserError.
func Userf(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// IsUser reports whether err is (or wraps) a *UserError.
func IsUser(err error) bool {
	var u *UserError
	return errors.As(err, &u)
}
