// Package status records the progress of a demo run. The recorder owns the
// in-memory event list for one run and mirrors every event to a persistent
// store and to optional sinks. Persistence failures never abort the run:
// they are logged and counted.
package status

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"custodian/internal/demo/metrics"
	"custodian/internal/demo/models"
)

// Store persists the status log of the current run. Reset replaces the log
// with an empty one; Append must preserve call order.
type Store interface {
	Reset(ctx context.Context) error
	Append(ctx context.Context, event models.StatusEvent) error
	List(ctx context.Context) ([]models.StatusEvent, error)
}

// Sink receives every recorded event, e.g. to publish it to a broker.
type Sink interface {
	Publish(ctx context.Context, runID uuid.UUID, event models.StatusEvent) error
}

// Trace classifies an event for logging and tracing.
type Trace string

const (
	TraceInfo    Trace = "info"
	TraceExit    Trace = "exit"
	TraceFailure Trace = "failure"
)

// Classify returns the trace class of an event: error events are failures,
// the terminal success message is an exit, everything else is informational.
func Classify(event models.StatusEvent) Trace {
	switch {
	case event.Error:
		return TraceFailure
	case event.Message == models.MessageDemoSetup:
		return TraceExit
	default:
		return TraceInfo
	}
}

// Recorder is the status log of one run. Safe for concurrent use, though a
// run records from a single goroutine.
type Recorder struct {
	runID   uuid.UUID
	store   Store
	sinks   []Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu     sync.Mutex
	events []models.StatusEvent
}

// Option configures a Recorder.
type Option func(*Recorder)

func WithSinks(sinks ...Sink) Option {
	return func(r *Recorder) {
		r.sinks = append(r.sinks, sinks...)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder builds the recorder for run runID.
func NewRecorder(runID uuid.UUID, store Store, logger *slog.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		runID:  runID,
		store:  store,
		logger: logger.With("run_id", runID.String()),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RunID returns the run this recorder belongs to.
func (r *Recorder) RunID() uuid.UUID {
	return r.runID
}

// Reset empties the persisted log at the start of a run.
func (r *Recorder) Reset(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	if r.store == nil {
		return
	}
	if err := r.store.Reset(ctx); err != nil {
		r.persistFailed(ctx, "reset", err)
	}
}

// Record appends event to the log. The timestamp is set when missing.
func (r *Recorder) Record(ctx context.Context, event models.StatusEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now().UTC()
	}

	r.mu.Lock()
	r.events = append(r.events, event)
	if r.store != nil {
		if err := r.store.Append(ctx, event); err != nil {
			r.persistFailed(ctx, "append", err)
		}
	}
	r.mu.Unlock()

	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, r.runID, event); err != nil {
			r.logger.WarnContext(ctx, "status sink publish failed", "message", event.Message, "error", err)
		}
	}

	r.trace(ctx, event)
}

// Events returns a copy of the events recorded so far, in order.
func (r *Recorder) Events() []models.StatusEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func (r *Recorder) trace(ctx context.Context, event models.StatusEvent) {
	class := Classify(event)
	span := trace.SpanFromContext(ctx)
	span.AddEvent("demo.status", trace.WithAttributes(
		attribute.String("trace", string(class)),
		attribute.String("message", event.Message),
	))

	switch class {
	case TraceFailure:
		span.SetStatus(codes.Error, event.Message)
		r.logger.ErrorContext(ctx, "demo status", "trace", class, "message", event.Message, "detail", string(event.Detail))
	default:
		r.logger.InfoContext(ctx, "demo status", "trace", class, "message", event.Message)
	}
}

func (r *Recorder) persistFailed(ctx context.Context, op string, err error) {
	r.metrics.IncrementStatusPersistFailure()
	r.logger.WarnContext(ctx, "status log persistence failed", "op", op, "error", err)
}
