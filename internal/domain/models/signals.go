package models

import (
	"strings"
	"time"
)

// StrategySeparator joins strategy names of an aggregated row.
const StrategySeparator = ", "

// AggregatedSignal is the deduplicated row for one (symbol, timestamp) pair.
// Strategies are unique and sorted.
type AggregatedSignal struct {
	Symbol     string    `json:"symbol"`
	Timestamp  time.Time `json:"datetime"`
	Strategies []string  `json:"strategies"`
}

// Label renders the strategies the way they are written to output, e.g. "MACD, RSI".
func (a AggregatedSignal) Label() string {
	return strings.Join(a.Strategies, StrategySeparator)
}

// Has reports whether the row lists the given strategy.
func (a AggregatedSignal) Has(strategy string) bool {
	for _, s := range a.Strategies {
		if s == strategy {
			return true
		}
	}
	return false
}

// FailureKind classifies a per-symbol failure.
type FailureKind string

const (
	FailureSchema       FailureKind = "schema"
	FailureIO           FailureKind = "io"
	FailureInsufficient FailureKind = "insufficient_history"
)

// SymbolFailure is one entry of the failure manifest.
type SymbolFailure struct {
	Symbol string      `json:"symbol"`
	Stage  string      `json:"stage"`
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

// RunReport is the outcome of one screening run.
type RunReport struct {
	RunAt       time.Time          `json:"run_at"`
	Lookback    time.Duration      `json:"lookback"`
	Symbols     int                `json:"symbols"`
	Events      int                `json:"events"`
	Signals     []AggregatedSignal `json:"signals"`
	Failures    []SymbolFailure    `json:"failures,omitempty"`
	Notes       []SymbolFailure    `json:"notes,omitempty"`
	NotifyError string             `json:"notify_error,omitempty"`
}

// Skipped returns the symbols excluded from screening, in manifest order.
func (r *RunReport) Skipped() []string {
	out := make([]string, 0, len(r.Failures))
	seen := make(map[string]struct{}, len(r.Failures))
	for _, f := range r.Failures {
		if _, ok := seen[f.Symbol]; ok || f.Symbol == "" {
			continue
		}
		seen[f.Symbol] = struct{}{}
		out = append(out, f.Symbol)
	}
	return out
}
