package notify

import (
	"context"
	"fmt"
	"time"

	"SignalScan/internal/domain/models"
	pkgkafka "SignalScan/pkg/kafka"
)

type digestMessage struct {
	SentAt time.Time `json:"sent_at"`
	Text   string    `json:"text"`
}

// Kafka publishes the digest text to a topic for chat bridges and archives.
type Kafka struct {
	producer *pkgkafka.Producer
	topic    string
	now      func() time.Time
}

func NewKafka(producer *pkgkafka.Producer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic, now: time.Now}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Send(ctx context.Context, text string) error {
	msg := digestMessage{SentAt: k.now().UTC(), Text: text}
	if err := k.producer.Publish(ctx, k.topic, []byte("digest"), msg); err != nil {
		return fmt.Errorf("%w: kafka: %v", models.ErrNotifier, err)
	}
	return nil
}
