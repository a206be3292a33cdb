package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScan/internal/domain/models"
	pkgkafka "SignalScan/pkg/kafka"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaSignalPublisher(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaSignalPublisher(pkgkafka.NewProducerWithWriter(w, "gzip"), "signalscan.signals")

	require.NoError(t, p.PublishBatch(context.Background(), sampleRows()))
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "signalscan.signals", w.msgs[0].Topic)
	assert.Equal(t, "AAPL", string(w.msgs[0].Key))
	assert.JSONEq(t,
		`{"symbol":"AAPL","datetime":"2024-01-05T00:00:00Z","strategies":["MACD","RSI"],"label":"MACD, RSI"}`,
		string(w.msgs[0].Value))

	require.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Len(t, w.msgs, 2)
}

func TestKafkaSignalPublisherError(t *testing.T) {
	w := &captureWriter{err: errors.New("no brokers")}
	p := NewKafkaSignalPublisher(pkgkafka.NewProducerWithWriter(w, "gzip"), "t")
	require.ErrorIs(t, p.PublishBatch(context.Background(), sampleRows()), models.ErrIO)
}
