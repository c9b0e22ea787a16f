// Package publisher fans demo status events out to Kafka so that dashboards
// can follow a run without polling the status log.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"custodian/internal/demo/models"
)

// Envelope is the JSON value of each published record. The record key is the
// run ID so that a run's events land in one partition, in order.
type Envelope struct {
	RunID     string          `json:"run_id"`
	Message   string          `json:"message"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	Error     bool            `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// KafkaSink publishes status events synchronously.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects a producer to brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

// Publish implements status.Sink.
func (k *KafkaSink) Publish(ctx context.Context, runID uuid.UUID, event models.StatusEvent) error {
	record, err := NewRecord(k.topic, runID, event)
	if err != nil {
		return err
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce status event: %w", err)
	}
	return nil
}

// EnsureTopic creates the status topic when the cluster does not have it.
func (k *KafkaSink) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	adm := kadm.NewClient(k.client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, k.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", k.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Close flushes and closes the producer.
func (k *KafkaSink) Close() {
	k.client.Close()
}

// NewRecord encodes one status event as a Kafka record.
func NewRecord(topic string, runID uuid.UUID, event models.StatusEvent) (*kgo.Record, error) {
	value, err := json.Marshal(Envelope{
		RunID:     runID.String(),
		Message:   event.Message,
		Detail:    event.Detail,
		Error:     event.Error,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("encode status event: %w", err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(runID.String()),
		Value: value,
	}, nil
}
