package metrics

import "time"

// NoopSink discards all metrics. Used when metrics are disabled and as the
// default in tests.
type NoopSink struct{}

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (*NoopSink) DispatchOutcome(string) {}

func (*NoopSink) DispatchFailure(string) {}

func (*NoopSink) SubmitCompleted(time.Duration) {}

func (*NoopSink) InvocationsInFlightIncr() {}

func (*NoopSink) InvocationsInFlightDecr() {}
