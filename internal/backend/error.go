package backend

import "fmt"

// Failure classifications carried on *Error. Callers branch on these rather
// than matching message text.
const (
	ClassAuthorizationDenied = "authorization-denied"
	ClassInvalidRequest      = "invalid-request"
	ClassNotFound            = "not-found"
	ClassTimeout             = "timeout"
	ClassUnreachable         = "unreachable"
	ClassBackendError        = "backend-error"
)

// Error is a dispatch failure: the backend rejected the launch request or
// could not be reached. StatusCode is zero for transport-level failures.
type Error struct {
	Classification string
	Message        string
	StatusCode     int
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("backend: %s (status %d): %s", e.Classification, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend: %s: %s", e.Classification, e.Message)
}
