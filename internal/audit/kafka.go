package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink fans audit events out to a Kafka topic for downstream consumers
// (SIEM, long-term compliance archive). Delivery is asynchronous; produce
// failures are logged, never surfaced to the emitting request.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaSink connects a producer to the given brokers.
func NewKafkaSink(brokers []string, topic string, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaSink{client: client, topic: topic, logger: logger}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.ErrorContext(ctx, "audit event marshal failed",
			"action", event.Action,
			"error", err,
		)
		return
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ElectionID),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("audit event produce failed",
				"action", event.Action,
				"topic", s.topic,
				"error", err,
			)
		}
	})
}

// Close flushes buffered records and releases the client.
func (s *KafkaSink) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}
