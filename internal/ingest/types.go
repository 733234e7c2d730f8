package ingest

import (
	"context"
	"time"

	"taskgate/internal/dispatch"
)

// EventDispatcher runs one event through the dispatch lifecycle. It never
// returns an error: failures are absorbed into the Outcome.
type EventDispatcher interface {
	Handle(ctx context.Context, raw []byte) dispatch.Outcome
}

// Config holds ingest server configuration.
type Config struct {
	// Listen is the address to bind (e.g. "127.0.0.1:8081").
	Listen string

	// Path is the URL path that accepts event envelopes.
	Path string

	// SignatureHeader is the HTTP header carrying the HMAC signature.
	// Empty disables verification.
	SignatureHeader string

	// Secret is the HMAC-SHA256 secret for signature verification.
	Secret string

	// MaxBodySize is the maximum allowed envelope size in bytes.
	MaxBodySize int64

	// InvocationBudget bounds one event handling end to end.
	InvocationBudget time.Duration
}

// AcceptedResponse is the JSON response for a completed invocation. The
// envelope is always accepted; Status says whether dispatch succeeded.
type AcceptedResponse struct {
	InvocationID   string `json:"invocation_id"`
	EventType      string `json:"event_type"`
	Status         string `json:"status"`
	Classification string `json:"classification,omitempty"`
	TaskID         string `json:"task_id,omitempty"`
}

// ErrorResponse is the JSON response for requests rejected before dispatch.
type ErrorResponse struct {
	Error string `json:"error"`
}
