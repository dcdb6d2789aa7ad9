package errors

import "net/http"

const CodeNotFound = "not_found"

// NotFound signals that a referenced entity, milestone, entry, issue or
// proposal is absent. Never retried.
func NotFound(message string) *Exception {
	return &Exception{
		Code:       CodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}
