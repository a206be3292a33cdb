package repository

import (
	"context"
	"time"

	"SignalScan/internal/domain/models"
)

// SignalStore persists the outcome of a run.
type SignalStore interface {
	Name() string
	Save(ctx context.Context, events []models.SignalEvent, rows []models.AggregatedSignal) error
}

// SnapshotStore keeps the most recent run report for readers.
type SnapshotStore interface {
	Put(ctx context.Context, r *models.RunReport) error
	Latest(ctx context.Context) (*models.RunReport, error)
}

// ReportWriter keeps a human-readable copy of each run report.
type ReportWriter interface {
	WriteReport(ctx context.Context, r *models.RunReport) error
}

// RunLock guards against overlapping runs.
type RunLock interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Publisher streams aggregated rows to downstream consumers.
type Publisher interface {
	PublishBatch(ctx context.Context, rows []models.AggregatedSignal) error
	Close() error
}

// Notifier delivers a pre-formatted digest.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

type Metrics interface {
	RecordSymbol(result string)
	RecordFailure(kind string)
	RecordEvent(strategy string)
	RecordRows(n int)
	RecordNotify(result string)
	RecordLatency(stage string, seconds float64)
}
