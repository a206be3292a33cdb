package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	"SignalScan/internal/services/strategy"
	applogger "SignalScan/pkg/logger"
)

// EmissionMode selects which active bars become events.
type EmissionMode string

const (
	// EmitAll emits an event for every active bar.
	EmitAll EmissionMode = "all"
	// EmitLatest emits only the most recent active bar per symbol and strategy.
	EmitLatest EmissionMode = "latest"
)

// ParseEmissionMode maps a config value onto an EmissionMode.
func ParseEmissionMode(s string) (EmissionMode, error) {
	switch EmissionMode(s) {
	case "", EmitAll:
		return EmitAll, nil
	case EmitLatest:
		return EmitLatest, nil
	default:
		return "", fmt.Errorf("%w: unknown emission mode %q", models.ErrInvalidConfig, s)
	}
}

// ScreenResult is the joined output of a screening pass.
type ScreenResult struct {
	Events []models.SignalEvent
	// Failures lists symbols skipped because of bad input.
	Failures []models.SymbolFailure
	// Notes lists detectors that had too little history; these are not skips.
	Notes []models.SymbolFailure
}

// Screener applies detectors to many symbols in parallel.
type Screener struct {
	workers int
	mode    EmissionMode
	l       *applogger.Logger
	metrics drepo.Metrics
}

func NewScreener(workers int, mode EmissionMode, l *applogger.Logger, m drepo.Metrics) *Screener {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if mode == "" {
		mode = EmitAll
	}
	if l == nil {
		l = applogger.Nop()
	}
	if m == nil {
		m = nopMetrics{}
	}
	return &Screener{workers: workers, mode: mode, l: l, metrics: m}
}

type symbolResult struct {
	symbol  string
	events  []models.SignalEvent
	failure *models.SymbolFailure
	notes   []models.SymbolFailure
}

// Screen fans symbols out to workers and joins their events. Cancelling ctx
// before the join discards everything and returns ctx.Err().
func (s *Screener) Screen(ctx context.Context, series map[string]models.BarSeries, detectors []strategy.Detector) (ScreenResult, error) {
	start := time.Now()
	symbols := make([]string, 0, len(series))
	for sym := range series {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	jobs := make(chan string)
	ch := make(chan symbolResult, len(symbols))
	var wg sync.WaitGroup

	workers := s.workers
	if workers > len(symbols) {
		workers = len(symbols)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				if ctx.Err() != nil {
					continue
				}
				ch <- s.screenOne(sym, series[sym], detectors)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, sym := range symbols {
			select {
			case jobs <- sym:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() { wg.Wait(); close(ch) }()

	var res ScreenResult
	for r := range ch {
		if r.failure != nil {
			res.Failures = append(res.Failures, *r.failure)
			continue
		}
		res.Events = append(res.Events, r.events...)
		res.Notes = append(res.Notes, r.notes...)
	}
	if err := ctx.Err(); err != nil {
		return ScreenResult{}, err
	}

	sortEvents(res.Events)
	sortFailures(res.Failures)
	sortFailures(res.Notes)
	s.metrics.RecordLatency("screen", time.Since(start).Seconds())
	return res, nil
}

func (s *Screener) screenOne(symbol string, bars models.BarSeries, detectors []strategy.Detector) symbolResult {
	out := symbolResult{symbol: symbol}
	if bars.Symbol == "" {
		bars.Symbol = symbol
	}
	if err := bars.Validate(); err != nil {
		f := models.FailureFrom(symbol, "validate", err)
		out.failure = &f
		s.l.Warn("symbol skipped",
			applogger.String("symbol", symbol),
			applogger.String("stage", "validate"),
			applogger.Error(err),
		)
		s.metrics.RecordSymbol("skipped")
		s.metrics.RecordFailure(string(f.Kind))
		return out
	}

	for _, d := range detectors {
		det, err := d.Detect(bars)
		if err != nil {
			if !errors.Is(err, models.ErrInsufficientHistory) {
				f := models.FailureFrom(symbol, d.Name(), err)
				out.failure = &f
				out.events = nil
				s.l.Error("detector failed",
					applogger.String("symbol", symbol),
					applogger.String("strategy", d.Name()),
					applogger.Error(err),
				)
				s.metrics.RecordSymbol("skipped")
				s.metrics.RecordFailure(string(f.Kind))
				return out
			}
			out.notes = append(out.notes, models.FailureFrom(symbol, d.Name(), err))
			s.l.Debug("insufficient history",
				applogger.String("symbol", symbol),
				applogger.String("strategy", d.Name()),
				applogger.Int("bars", bars.Len()),
			)
			continue
		}
		out.events = append(out.events, s.emit(bars, d.Name(), det)...)
	}
	s.metrics.RecordSymbol("ok")
	return out
}

func (s *Screener) emit(bars models.BarSeries, name string, det strategy.Detection) []models.SignalEvent {
	if !det.Triggered() {
		return nil
	}
	if s.mode == EmitLatest {
		s.metrics.RecordEvent(name)
		return []models.SignalEvent{{Symbol: bars.Symbol, Timestamp: det.Last, Strategy: name}}
	}
	out := make([]models.SignalEvent, 0, det.Count())
	for _, i := range det.Indices() {
		out = append(out, models.SignalEvent{Symbol: bars.Symbol, Timestamp: bars.Bars[i].Timestamp, Strategy: name})
		s.metrics.RecordEvent(name)
	}
	return out
}

func sortEvents(ev []models.SignalEvent) {
	sort.Slice(ev, func(i, j int) bool {
		if ev[i].Symbol != ev[j].Symbol {
			return ev[i].Symbol < ev[j].Symbol
		}
		if !ev[i].Timestamp.Equal(ev[j].Timestamp) {
			return ev[i].Timestamp.Before(ev[j].Timestamp)
		}
		return ev[i].Strategy < ev[j].Strategy
	})
}

func sortFailures(fs []models.SymbolFailure) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].Symbol != fs[j].Symbol {
			return fs[i].Symbol < fs[j].Symbol
		}
		return fs[i].Stage < fs[j].Stage
	})
}

type nopMetrics struct{}

func (nopMetrics) RecordSymbol(string) {}
func (nopMetrics) RecordFailure(string) {}
func (nopMetrics) RecordEvent(string) {}
func (nopMetrics) RecordRows(int) {}
func (nopMetrics) RecordNotify(string) {}
func (nopMetrics) RecordLatency(string, float64) {}
