package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Envelope wraps every event written to the topic.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// KeyFunc picks the partition key for a payload so events of one order stay ordered.
type KeyFunc func(data any) []byte

type Producer struct {
	w        *kafka.Writer
	producer string
	key      KeyFunc
}

func NewProducer(brokers []string, topic, producer string, key KeyFunc) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		producer: producer,
		key:      key,
	}
}

// Publish writes one envelope synchronously; eventType becomes the x-event-type header.
func (p *Producer) Publish(ctx context.Context, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     p.producer,
		Payload:      payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	var key []byte
	if p.key != nil {
		key = p.key(data)
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", eventType, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}
