package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Revalidator tells view caches that the page at path is stale.
type Revalidator interface {
	Revalidate(ctx context.Context, path string) error
}

// Writer is the subset of *kafka.Writer used by KafkaRevalidator.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RevalidateEvent is the JSON value of each revalidation message.
type RevalidateEvent struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// revalidateBatchTimeout bounds how long a synchronous write waits for more
// messages to batch with. Requests publish one event each.
const revalidateBatchTimeout = 10 * time.Millisecond

type KafkaRevalidator struct {
	writer Writer
}

func NewKafkaRevalidator(brokers []string, topic string) *KafkaRevalidator {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: revalidateBatchTimeout,
	}
	return &KafkaRevalidator{writer: w}
}

func NewKafkaRevalidatorWithWriter(w Writer) *KafkaRevalidator {
	return &KafkaRevalidator{writer: w}
}

// Revalidate publishes one event keyed by path.
func (r *KafkaRevalidator) Revalidate(ctx context.Context, path string) error {
	b, err := json.Marshal(RevalidateEvent{Path: path, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := r.writer.WriteMessages(ctx, kafka.Message{Key: []byte(path), Value: b}); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (r *KafkaRevalidator) Close() error {
	return r.writer.Close()
}

type NoopRevalidator struct{}

func (NoopRevalidator) Revalidate(context.Context, string) error { return nil }
