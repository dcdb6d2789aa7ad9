package errors

import "net/http"

const CodeValidationFailed = "validation_failed"

// ValidationFailed signals malformed input, rejected before any mutation.
func ValidationFailed(message string) *Exception {
	return &Exception{
		Code:       CodeValidationFailed,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}
