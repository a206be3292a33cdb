package models

import (
	"fmt"
	"math"
	"time"
)

// Bar is one OHLCV record of a symbol's price history.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// BarSeries is the ordered price history of one symbol.
type BarSeries struct {
	Symbol string
	Bars   []Bar
}

// Len returns the number of bars.
func (s BarSeries) Len() int { return len(s.Bars) }

// Closes returns the close prices in bar order.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Validate checks the ordering and field invariants of the series.
// Any violation is reported as ErrSchema.
func (s BarSeries) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrSchema)
	}
	for i, b := range s.Bars {
		if b.Timestamp.IsZero() {
			return fmt.Errorf("%w: bar %d has no timestamp", ErrSchema, i)
		}
		if !finite(b.Open) || !finite(b.High) || !finite(b.Low) || !finite(b.Close) || !finite(b.Volume) {
			return fmt.Errorf("%w: bar %d (%s) has a non-numeric field", ErrSchema, i, b.Timestamp.Format(time.RFC3339))
		}
		if b.Volume < 0 {
			return fmt.Errorf("%w: bar %d (%s) has negative volume", ErrSchema, i, b.Timestamp.Format(time.RFC3339))
		}
		if i > 0 && !b.Timestamp.After(s.Bars[i-1].Timestamp) {
			return fmt.Errorf("%w: timestamps not strictly increasing at bar %d (%s)", ErrSchema, i, b.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// SignalEvent records that a strategy fired for a symbol at a bar.
type SignalEvent struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Strategy  string    `json:"strategy"`
}
