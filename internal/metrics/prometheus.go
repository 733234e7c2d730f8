package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"taskgate/internal/log"
)

// PrometheusSink implements Sink using the Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	outcomesTotal       *prometheus.CounterVec
	failuresTotal       *prometheus.CounterVec
	submitDuration      prometheus.Histogram
	invocationsInFlight prometheus.Gauge
}

// NewPrometheusSink creates a new Prometheus metrics sink registered on reg.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskgate_dispatch_outcomes_total",
			Help: "Total number of dispatch outcomes per received event.",
		}, []string{"outcome"}),
		failuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskgate_dispatch_failures_total",
			Help: "Total number of dispatch failures by classification.",
		}, []string{"classification"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskgate_backend_submit_duration_seconds",
			Help:    "Backend run-task submission latency in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		invocationsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskgate_invocations_in_flight",
			Help: "Number of events currently being handled.",
		}),
	}

	s.register(reg, s.outcomesTotal, "taskgate_dispatch_outcomes_total")
	s.register(reg, s.failuresTotal, "taskgate_dispatch_failures_total")
	s.register(reg, s.submitDuration, "taskgate_backend_submit_duration_seconds")
	s.register(reg, s.invocationsInFlight, "taskgate_invocations_in_flight")
	return s
}

// register attempts to register a collector, logging any errors without
// propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Warn("metrics: failed to register collector", "name", name, "error", err)
	}
}

func (s *PrometheusSink) DispatchOutcome(outcome string) {
	s.outcomesTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) DispatchFailure(classification string) {
	s.failuresTotal.WithLabelValues(classification).Inc()
}

func (s *PrometheusSink) SubmitCompleted(duration time.Duration) {
	s.submitDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) InvocationsInFlightIncr() {
	s.invocationsInFlight.Inc()
}

func (s *PrometheusSink) InvocationsInFlightDecr() {
	s.invocationsInFlight.Dec()
}
