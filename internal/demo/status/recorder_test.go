package status

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian/internal/demo/metrics"
	"custodian/internal/demo/models"
)

type fakeStore struct {
	events    []models.StatusEvent
	resets    int
	appendErr error
	resetErr  error
}

func (f *fakeStore) Reset(context.Context) error {
	f.resets++
	if f.resetErr != nil {
		return f.resetErr
	}
	f.events = nil
	return nil
}

func (f *fakeStore) Append(_ context.Context, event models.StatusEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) List(context.Context) ([]models.StatusEvent, error) {
	return f.events, nil
}

type fakeSink struct {
	runIDs []uuid.UUID
	events []models.StatusEvent
	err    error
}

func (f *fakeSink) Publish(_ context.Context, runID uuid.UUID, event models.StatusEvent) error {
	f.runIDs = append(f.runIDs, runID)
	f.events = append(f.events, event)
	return f.err
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

func TestClassify(t *testing.T) {
	assert.Equal(t, TraceFailure, Classify(models.StatusEvent{Message: models.MessageDemoSetup, Error: true}))
	assert.Equal(t, TraceExit, Classify(models.StatusEvent{Message: models.MessageDemoSetup}))
	assert.Equal(t, TraceInfo, Classify(models.StatusEvent{Message: models.MessageCreatingAssets}))
}

func TestRecorder_RecordsInOrder(t *testing.T) {
	store := &fakeStore{}
	sink := &fakeSink{}
	logger, _ := newTestLogger()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	runID := uuid.New()

	rec := NewRecorder(runID, store, logger, WithSinks(sink), WithClock(func() time.Time { return fixed }))
	rec.Reset(context.Background())
	rec.Record(context.Background(), models.StatusEvent{Message: models.MessageCreatingAssets})
	rec.Record(context.Background(), models.StatusEvent{Message: models.MessageDemoSetup})

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, models.MessageCreatingAssets, events[0].Message)
	assert.Equal(t, models.MessageDemoSetup, events[1].Message)
	assert.Equal(t, fixed, events[0].Timestamp)

	assert.Equal(t, events, store.events)
	assert.Equal(t, 1, store.resets)
	assert.Equal(t, []uuid.UUID{runID, runID}, sink.runIDs)
	assert.Equal(t, runID, rec.RunID())
}

func TestRecorder_PersistenceFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{appendErr: errors.New("disk full"), resetErr: errors.New("read-only")}
	logger, logs := newTestLogger()
	m := metrics.New(prometheus.NewRegistry())

	rec := NewRecorder(uuid.New(), store, logger, WithMetrics(m))
	rec.Reset(context.Background())
	rec.Record(context.Background(), models.StatusEvent{Message: models.MessageCreatingAssets})

	assert.Len(t, rec.Events(), 1, "in-memory log keeps the event")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatusPersistFailures))
	assert.Contains(t, logs.String(), "status log persistence failed")
	assert.Contains(t, logs.String(), "disk full")
}

func TestRecorder_SinkFailureIsLogged(t *testing.T) {
	logger, logs := newTestLogger()
	sink := &fakeSink{err: errors.New("broker down")}

	rec := NewRecorder(uuid.New(), nil, logger, WithSinks(sink))
	rec.Record(context.Background(), models.StatusEvent{Message: "x", Error: true})

	assert.Len(t, sink.events, 1)
	assert.Contains(t, logs.String(), "status sink publish failed")
	assert.Contains(t, logs.String(), "trace=failure")
}

func TestRecorder_EventsReturnsCopy(t *testing.T) {
	rec := NewRecorder(uuid.New(), nil, nil)
	rec.Record(context.Background(), models.StatusEvent{Message: "a"})

	events := rec.Events()
	events[0].Message = "changed"
	assert.Equal(t, "a", rec.Events()[0].Message)
}
