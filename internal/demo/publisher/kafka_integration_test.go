//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"custodian/internal/demo/models"
	"custodian/pkg/testutil/containers"
)

func TestKafkaSink_PublishesInOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := containers.NewRedpandaContainer(t)
	defer func() { _ = broker.Close(context.Background()) }()

	const topic = "custodian.demo.status.test"
	sink, err := NewKafkaSink([]string{broker.Broker}, topic)
	require.NoError(t, err)
	defer sink.Close()
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1), "existing topic is not an error")

	runID := uuid.New()
	messages := []string{models.MessageCreatingAssets, models.MessageUpdatingAssets, models.MessageDemoSetup}
	for _, msg := range messages {
		require.NoError(t, sink.Publish(ctx, runID, models.StatusEvent{Message: msg, Timestamp: time.Now().UTC()}))
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	var got []string
	for len(got) < len(messages) {
		fetches := consumer.PollFetches(ctx)
		require.NoError(t, ctx.Err())
		fetches.EachRecord(func(r *kgo.Record) {
			var env Envelope
			require.NoError(t, json.Unmarshal(r.Value, &env))
			assert.Equal(t, runID.String(), string(r.Key))
			got = append(got, env.Message)
		})
	}
	assert.Equal(t, messages, got)
}
