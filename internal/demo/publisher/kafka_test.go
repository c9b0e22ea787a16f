package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian/internal/demo/models"
)

func TestNewRecord(t *testing.T) {
	runID := uuid.New()
	ts := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	event := models.StatusEvent{
		Message:   models.MessageLedgerFailure,
		Detail:    json.RawMessage(`{"code":"NOT_OWNER"}`),
		Error:     true,
		Timestamp: ts,
	}

	record, err := NewRecord("custodian.demo.status", runID, event)
	require.NoError(t, err)
	assert.Equal(t, "custodian.demo.status", record.Topic)
	assert.Equal(t, runID.String(), string(record.Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(record.Value, &env))
	assert.Equal(t, runID.String(), env.RunID)
	assert.True(t, env.Error)
	assert.JSONEq(t, `{"code":"NOT_OWNER"}`, string(env.Detail))
	assert.Equal(t, ts, env.Timestamp)
}

func TestNewKafkaSinkValidation(t *testing.T) {
	_, err := NewKafkaSink(nil, "topic")
	assert.Error(t, err)

	_, err = NewKafkaSink([]string{"localhost:9092"}, "")
	assert.Error(t, err)
}
