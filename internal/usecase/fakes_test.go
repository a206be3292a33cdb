package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"SignalScan/internal/domain/models"
)

var day1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func bars(symbol string, closes ...float64) models.BarSeries {
	out := models.BarSeries{Symbol: symbol, Bars: make([]models.Bar, len(closes))}
	for i, c := range closes {
		out.Bars[i] = models.Bar{Timestamp: day1.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	return out
}

// dayN returns the timestamp of the n-th (1-based) bar built by bars.
func dayN(n int) time.Time { return day1.AddDate(0, 0, n-1) }

type memSource struct {
	data    map[string]models.BarSeries
	errs    map[string]error
	listErr error
}

func (m *memSource) Symbols(context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]string, 0, len(m.data)+len(m.errs))
	for s := range m.data {
		out = append(out, s)
	}
	for s := range m.errs {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memSource) Load(_ context.Context, symbol string) (models.BarSeries, error) {
	if err, ok := m.errs[symbol]; ok {
		return models.BarSeries{}, err
	}
	return m.data[symbol], nil
}

type recordStore struct {
	mu     sync.Mutex
	name   string
	events []models.SignalEvent
	rows   []models.AggregatedSignal
	calls  int
	err    error
}

func (s *recordStore) Name() string { return s.name }

func (s *recordStore) Save(_ context.Context, events []models.SignalEvent, rows []models.AggregatedSignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.events = events
	s.rows = rows
	return nil
}

type stubNotifier struct {
	texts []string
	err   error
}

func (n *stubNotifier) Name() string { return "stub" }

func (n *stubNotifier) Send(_ context.Context, text string) error {
	n.texts = append(n.texts, text)
	return n.err
}

type memSnapshot struct{ last *models.RunReport }

func (m *memSnapshot) Put(_ context.Context, r *models.RunReport) error {
	m.last = r
	return nil
}

func (m *memSnapshot) Latest(context.Context) (*models.RunReport, error) { return m.last, nil }

type memReports struct {
	got []*models.RunReport
	err error
}

func (m *memReports) WriteReport(_ context.Context, r *models.RunReport) error {
	m.got = append(m.got, r)
	return m.err
}

type memLock struct{ held bool }

func (l *memLock) TryLock(context.Context, string, time.Duration) (bool, error) {
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *memLock) Unlock(context.Context, string) error {
	l.held = false
	return nil
}

type countingMetrics struct {
	mu       sync.Mutex
	symbols  map[string]int
	failures map[string]int
	events   map[string]int
	rows     int
	notify   map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		symbols:  map[string]int{},
		failures: map[string]int{},
		events:   map[string]int{},
		notify:   map[string]int{},
	}
}

func (m *countingMetrics) RecordSymbol(r string) { m.mu.Lock(); m.symbols[r]++; m.mu.Unlock() }

func (m *countingMetrics) RecordFailure(k string) { m.mu.Lock(); m.failures[k]++; m.mu.Unlock() }

func (m *countingMetrics) RecordEvent(s string) { m.mu.Lock(); m.events[s]++; m.mu.Unlock() }

func (m *countingMetrics) RecordRows(n int) { m.mu.Lock(); m.rows = n; m.mu.Unlock() }

func (m *countingMetrics) RecordNotify(r string) { m.mu.Lock(); m.notify[r]++; m.mu.Unlock() }

func (m *countingMetrics) RecordLatency(string, float64) {}
