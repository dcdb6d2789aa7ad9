package errors

import (
	"errors"
	"net/http"
)

// Exception is the error type surfaced by the engagement core. Code is the
// wire-level status code callers see, StatusCode the HTTP mapping.
type Exception struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

// StatusCode maps an error to its HTTP status, defaulting to 500.
func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Code maps an error to its wire code, defaulting to "internal".
func Code(err error) string {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "internal"
}

// Is reports whether err carries the given wire code.
func Is(err error, code string) bool {
	return Code(err) == code
}
