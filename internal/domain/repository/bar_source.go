package repository

import (
	"context"

	"SignalScan/internal/domain/models"
)

// Timeframe represents bar resolution.
type Timeframe string

const (
	TF1h Timeframe = "1h"
	TF1d Timeframe = "1d"
	TF1w Timeframe = "1w"
)

// BarSource provides read-only access to per-symbol price histories.
type BarSource interface {
	// Symbols lists the symbols the source can load, sorted.
	Symbols(ctx context.Context) ([]string, error)
	// Load returns the ordered bar series of one symbol.
	Load(ctx context.Context, symbol string) (models.BarSeries, error)
}
