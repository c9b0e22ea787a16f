package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for demo pipeline runs.
type Metrics struct {
	// Ledger submissions by operation and outcome
	LedgerOperations *prometheus.CounterVec

	// Ledger acknowledgment latency by operation
	LedgerLatency *prometheus.HistogramVec

	// Duration of each pipeline stage
	StageDuration *prometheus.HistogramVec

	// Completed runs by outcome
	Runs *prometheus.CounterVec

	// Status log writes that failed and were swallowed
	StatusPersistFailures prometheus.Counter
}

// New creates the demo metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		LedgerOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custodian_ledger_operations_total",
			Help: "Ledger submissions by operation and outcome",
		}, []string{"op", "outcome"}), // op: "create", "transfer", "update"; outcome: "ok", "error"

		LedgerLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "custodian_ledger_operation_duration_seconds",
			Help:    "Time from submission to ledger acknowledgment",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "custodian_demo_stage_duration_seconds",
			Help:    "Duration of demo pipeline stages",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),

		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custodian_demo_runs_total",
			Help: "Demo pipeline runs by outcome",
		}, []string{"outcome"}),

		StatusPersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "custodian_demo_status_persist_failures_total",
			Help: "Status log writes that failed without aborting the run",
		}),
	}
}

// ObserveLedgerOperation records one ledger submission.
func (m *Metrics) ObserveLedgerOperation(op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.LedgerOperations.WithLabelValues(op, outcome).Inc()
	m.LedgerLatency.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveStage records the duration of a pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementRun records a finished run.
func (m *Metrics) IncrementRun(outcome string) {
	if m != nil {
		m.Runs.WithLabelValues(outcome).Inc()
	}
}

// IncrementStatusPersistFailure records a swallowed status log write failure.
func (m *Metrics) IncrementStatusPersistFailure() {
	if m != nil {
		m.StatusPersistFailures.Inc()
	}
}
