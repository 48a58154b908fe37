package market

import (
	"errors"
	"fmt"
)

// ErrExhausted is the terminal error after all retry cycles failed on
// transient conditions. Its text is the error column value consumers see.
var ErrExhausted = errors.New("Exhausted retries")

// Upstream error codes with special handling. Everything else is fatal.
const (
	// codeNoStatus marks transport-level failures that produced no HTTP
	// status or error payload at all.
	codeNoStatus = -1

	// codeAuthMode means the key was presented under the wrong convention
	// for this endpoint; the next auth mode may still succeed.
	codeAuthMode = 2
)

// APIError is an upstream itemmarket error payload.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code == codeNoStatus {
		return fmt.Sprintf("upstream unreachable: %s", e.Message)
	}
	return fmt.Sprintf("upstream error %d: %s", e.Code, e.Message)
}

// transientCode reports whether an upstream error code signals a condition
// worth backing off and retrying.
func transientCode(code int) bool {
	return code == 0 || code == 10
}

// retryableStatus reports whether an HTTP status is treated like a
// transient upstream error.
func retryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
