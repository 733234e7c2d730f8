package metrics

import "time"

// Sink defines the interface for recording dispatcher metrics.
// All methods are fire-and-forget: implementations MUST NOT block or
// propagate errors. If the metrics backend is unavailable, implementations
// log warnings and continue.
type Sink interface {
	DispatchOutcome(outcome string)
	DispatchFailure(classification string)
	SubmitCompleted(duration time.Duration)
	InvocationsInFlightIncr()
	InvocationsInFlightDecr()
}

// Outcome constants for DispatchOutcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)
