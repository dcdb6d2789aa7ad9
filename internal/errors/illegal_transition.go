package errors

import "net/http"

const CodeIllegalTransition = "illegal_transition"

// IllegalTransition signals a status-graph violation. The caller must choose
// a valid next state; the entity is left unmutated.
func IllegalTransition(message string) *Exception {
	return &Exception{
		Code:       CodeIllegalTransition,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}
