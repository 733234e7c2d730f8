package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taskgate/internal/backend"
	"taskgate/internal/event"
	"taskgate/internal/launch"
	"taskgate/internal/log"
	"taskgate/internal/metrics"
	"taskgate/internal/placement"
)

// Classification assigned to failures that never reached the backend because
// the event detail could not be serialized.
const ClassSerializationError = "serialization-error"

// Outcome is the result of handling one event. It is produced once, consumed
// by the caller for its response, and discarded; nothing persists it.
type Outcome struct {
	InvocationID   string
	EventType      string
	Status         string
	Classification string
	Message        string
	TaskID         string
	Duration       time.Duration
}

// Succeeded reports whether the backend accepted the task.
func (o Outcome) Succeeded() bool {
	return o.Status == metrics.OutcomeSuccess
}

// Dispatcher handles inbound events. All collaborators are injected at
// construction so tests can substitute the backend.
type Dispatcher struct {
	pc      placement.Context
	runner  backend.Runner
	metrics metrics.Sink
	logger  *slog.Logger
}

// New creates a Dispatcher. A nil logger falls back to the component logger;
// metrics default to the no-op sink.
func New(pc placement.Context, runner backend.Runner, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = log.WithComponent("dispatch")
	}
	return &Dispatcher{
		pc:      pc,
		runner:  runner,
		metrics: metrics.NewNoopSink(),
		logger:  logger,
	}
}

// WithMetrics attaches a metrics sink to the dispatcher.
func (d *Dispatcher) WithMetrics(sink metrics.Sink) *Dispatcher {
	d.metrics = sink
	return d
}

// Handle runs the full pipeline for one raw event envelope: decode, build,
// submit, report. It never returns an error and never retries; whatever
// happens, the caller gets an Outcome and the log stream gets exactly one
// outcome record.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) Outcome {
	d.metrics.InvocationsInFlightIncr()
	defer d.metrics.InvocationsInFlightDecr()

	started := time.Now()
	out := Outcome{
		InvocationID: uuid.New().String(),
	}

	ev := event.Decode(raw)
	out.EventType = ev.Type

	req, err := launch.Build(d.pc, ev)
	if err != nil {
		out.Status = metrics.OutcomeFailed
		out.Classification = ClassSerializationError
		out.Message = err.Error()
		out.Duration = time.Since(started)
		d.report(out)
		return out
	}

	submitStart := time.Now()
	resp, err := d.runner.Submit(ctx, req)
	d.metrics.SubmitCompleted(time.Since(submitStart))

	out.Duration = time.Since(started)
	if err != nil {
		out.Status = metrics.OutcomeFailed
		out.Classification, out.Message = classify(err)
		d.report(out)
		return out
	}

	out.Status = metrics.OutcomeSuccess
	out.TaskID = resp.TaskID
	d.report(out)
	return out
}

// classify extracts the backend failure classification. Anything that is not
// a *backend.Error is still surfaced as a backend failure rather than lost.
func classify(err error) (string, string) {
	var berr *backend.Error
	if errors.As(err, &berr) {
		return berr.Classification, berr.Message
	}
	return backend.ClassBackendError, err.Error()
}

// report emits the single outcome record for this invocation and updates the
// outcome counters.
func (d *Dispatcher) report(out Outcome) {
	d.metrics.DispatchOutcome(out.Status)

	logger := d.logger.With(
		"invocation_id", out.InvocationID,
		"event_type", out.EventType,
		"status", out.Status,
		"duration_ms", out.Duration.Milliseconds(),
	)

	if out.Succeeded() {
		logger.Info("dispatch outcome", "task_id", out.TaskID)
		return
	}

	d.metrics.DispatchFailure(out.Classification)
	logger.Error("dispatch outcome",
		"classification", out.Classification,
		"error", out.Message,
	)
}
