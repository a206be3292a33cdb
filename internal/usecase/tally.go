package usecase

import (
	"sort"
	"time"

	"SignalScan/internal/domain/models"
)

// LookbackFromDays converts a day count into a lookback window.
func LookbackFromDays(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}

type tallyKey struct {
	symbol string
	ts     int64
}

// Tally keeps events at or after now-lookback, merges events sharing
// (symbol, timestamp) into one row with sorted unique strategy names and
// orders rows by symbol ascending, then timestamp descending.
// A non-positive lookback keeps every event.
func Tally(events []models.SignalEvent, lookback time.Duration, now time.Time) []models.AggregatedSignal {
	cutoff := now.Add(-lookback)
	groups := make(map[tallyKey]*models.AggregatedSignal)
	seen := make(map[tallyKey]map[string]struct{})

	for _, e := range events {
		if lookback > 0 && e.Timestamp.Before(cutoff) {
			continue
		}
		k := tallyKey{symbol: e.Symbol, ts: e.Timestamp.UnixNano()}
		row, ok := groups[k]
		if !ok {
			row = &models.AggregatedSignal{Symbol: e.Symbol, Timestamp: e.Timestamp}
			groups[k] = row
			seen[k] = make(map[string]struct{}, 2)
		}
		if _, dup := seen[k][e.Strategy]; dup {
			continue
		}
		seen[k][e.Strategy] = struct{}{}
		row.Strategies = append(row.Strategies, e.Strategy)
	}

	out := make([]models.AggregatedSignal, 0, len(groups))
	for _, row := range groups {
		sort.Strings(row.Strategies)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
