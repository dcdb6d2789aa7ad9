package errors

import "net/http"

const CodeInvalidState = "invalid_state"

// InvalidState signals a precondition conflict such as a double payment
// release or out-of-order milestone approval. Safe to retry after re-reading
// the current state.
func InvalidState(message string) *Exception {
	return &Exception{
		Code:       CodeInvalidState,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}
