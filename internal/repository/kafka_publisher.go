package repository

import (
	"context"
	"fmt"
	"time"

	"SignalScan/internal/domain/models"
	pkgkafka "SignalScan/pkg/kafka"
)

// signalMessage is the payload of one aggregated row on the signals topic.
type signalMessage struct {
	Symbol     string    `json:"symbol"`
	Datetime   time.Time `json:"datetime"`
	Strategies []string  `json:"strategies"`
	Label      string    `json:"label"`
}

// KafkaSignalPublisher publishes aggregated rows keyed by symbol.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishBatch(ctx context.Context, rows []models.AggregatedSignal) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(rows))
	for i, r := range rows {
		msgs[i] = pkgkafka.Message{
			Key: []byte(r.Symbol),
			Value: signalMessage{
				Symbol:     r.Symbol,
				Datetime:   r.Timestamp.UTC(),
				Strategies: r.Strategies,
				Label:      r.Label(),
			},
		}
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	return nil
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
