package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"covenant/internal/platform/kafka/producer"
)

// KafkaSink writes mirrored audit events to a Kafka topic, keyed by consent
// ID so all events for one consent land on the same partition in order.
type KafkaSink struct {
	producer *producer.Producer
	topic    string
}

// NewKafkaSink constructs a sink over a configured producer.
func NewKafkaSink(p *producer.Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic}
}

func (s *KafkaSink) Write(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.ConsentID),
		Value: payload,
		Headers: map[string]string{
			"action": event.Action,
		},
	})
}
