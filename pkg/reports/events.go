package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// DefaultTopic carries report events.
const DefaultTopic = "accident-reports"

// EventReported is the type of the event emitted for a new report.
const EventReported = "accident_reported"

// Event is the message published for each stored report.
type Event struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Report     Report    `json:"report"`
}

// Publisher announces stored reports to other systems.
type Publisher interface {
	Publish(ctx context.Context, r Report) error
}

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher,
// so tests can substitute it.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes report events to a Kafka topic.
type KafkaPublisher struct {
	writer MessageWriter
	now    func() time.Time
}

// NewKafkaPublisher returns a publisher writing to topic on broker.
func NewKafkaPublisher(broker, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	})
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now}
}

// Publish writes one event keyed by a fresh UUID.
func (p *KafkaPublisher) Publish(ctx context.Context, r Report) error {
	ev := Event{
		ID:         uuid.NewString(),
		Type:       EventReported,
		OccurredAt: p.now().UTC(),
		Report:     r,
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ID),
		Value: value,
		Time:  ev.OccurredAt,
	}); err != nil {
		return fmt.Errorf("failed to publish report %d: %w", r.ID, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
