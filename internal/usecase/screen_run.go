package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	"SignalScan/internal/services/report"
	"SignalScan/internal/services/strategy"
	applogger "SignalScan/pkg/logger"
)

const runLockKey = "run:lock"

// ScreenRun executes one point-in-time screening run end to end.
type ScreenRun struct {
	source    drepo.BarSource
	screener  *Screener
	detectors []strategy.Detector
	lookback  time.Duration
	loaders   int

	stores    []drepo.SignalStore
	snapshot  drepo.SnapshotStore
	reports   drepo.ReportWriter
	publisher drepo.Publisher
	notifier  drepo.Notifier
	notifyTO  time.Duration
	lock      drepo.RunLock
	lockTTL   time.Duration

	metrics drepo.Metrics
	l       *applogger.Logger
}

// RunOption configures ScreenRun.
type RunOption func(*ScreenRun)

// WithStores sets the output tables written at the end of each run.
func WithStores(stores ...drepo.SignalStore) RunOption {
	return func(r *ScreenRun) { r.stores = append(r.stores, stores...) }
}

// WithSnapshot keeps the latest report for readers.
func WithSnapshot(s drepo.SnapshotStore) RunOption {
	return func(r *ScreenRun) { r.snapshot = s }
}

// WithReportWriter keeps a text digest of every run.
func WithReportWriter(w drepo.ReportWriter) RunOption {
	return func(r *ScreenRun) { r.reports = w }
}

// WithPublisher streams aggregated rows downstream.
func WithPublisher(p drepo.Publisher) RunOption {
	return func(r *ScreenRun) { r.publisher = p }
}

// WithNotifier delivers the digest; a positive timeout bounds the blocking send.
func WithNotifier(n drepo.Notifier, timeout time.Duration) RunOption {
	return func(r *ScreenRun) {
		r.notifier = n
		if timeout > 0 {
			r.notifyTO = timeout
		}
	}
}

// WithRunLock refuses to start while another run holds the lock.
func WithRunLock(l drepo.RunLock, ttl time.Duration) RunOption {
	return func(r *ScreenRun) {
		r.lock = l
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// WithLoaders bounds concurrent symbol loads.
func WithLoaders(n int) RunOption {
	return func(r *ScreenRun) { r.loaders = n }
}

func NewScreenRun(
	source drepo.BarSource,
	screener *Screener,
	detectors []strategy.Detector,
	lookback time.Duration,
	metrics drepo.Metrics,
	l *applogger.Logger,
	opts ...RunOption,
) *ScreenRun {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	r := &ScreenRun{
		source:    source,
		screener:  screener,
		detectors: detectors,
		lookback:  lookback,
		loaders:   8,
		notifyTO:  15 * time.Second,
		lockTTL:   10 * time.Minute,
		metrics:   metrics,
		l:         l,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run screens every symbol of the source as of now. Per-symbol problems land
// in the report's failure manifest; only a cancelled context, a held run lock
// or an unreadable symbol list fail the run.
func (r *ScreenRun) Run(ctx context.Context, now time.Time) (*models.RunReport, error) {
	start := time.Now()
	if r.lock != nil {
		ok, err := r.lock.TryLock(ctx, runLockKey, r.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return nil, models.ErrRunInProgress
		}
		defer func() {
			if err := r.lock.Unlock(context.Background(), runLockKey); err != nil {
				r.l.Warn("release run lock", applogger.Error(err))
			}
		}()
	}

	series, loadFailures, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	res, err := r.screener.Screen(ctx, series, r.detectors)
	if err != nil {
		return nil, fmt.Errorf("screen: %w", err)
	}

	rows := Tally(res.Events, r.lookback, now)
	rep := &models.RunReport{
		RunAt:    now,
		Lookback: r.lookback,
		Symbols:  len(series) + len(loadFailures),
		Events:   len(res.Events),
		Signals:  rows,
		Failures: append(loadFailures, res.Failures...),
		Notes:    res.Notes,
	}
	sortFailures(rep.Failures)
	r.metrics.RecordRows(len(rows))

	r.persist(ctx, rep, res.Events)
	r.writeReport(ctx, rep)
	r.notify(ctx, rep)
	if r.snapshot != nil {
		if err := r.snapshot.Put(ctx, rep); err != nil {
			r.l.Error("snapshot write failed", applogger.Error(err))
		}
	}

	r.metrics.RecordLatency("run", time.Since(start).Seconds())
	r.l.Info("run complete",
		applogger.Int("symbols", rep.Symbols),
		applogger.Int("events", rep.Events),
		applogger.Int("signals", len(rows)),
		applogger.Strings("skipped", rep.Skipped()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return rep, nil
}

func (r *ScreenRun) load(ctx context.Context) (map[string]models.BarSeries, []models.SymbolFailure, error) {
	start := time.Now()
	symbols, err := r.source.Symbols(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list symbols: %w", err)
	}

	type item struct {
		symbol string
		bars   models.BarSeries
		err    error
	}
	ch := make(chan item, len(symbols))
	sem := make(chan struct{}, max(1, r.loaders))
	var wg sync.WaitGroup
	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			bars, err := r.source.Load(ctx, sym)
			ch <- item{symbol: sym, bars: bars, err: err}
		}(sym)
	}
	go func() { wg.Wait(); close(ch) }()

	series := make(map[string]models.BarSeries, len(symbols))
	var failures []models.SymbolFailure
	for it := range ch {
		if it.err != nil {
			f := models.FailureFrom(it.symbol, "load", it.err)
			failures = append(failures, f)
			r.metrics.RecordSymbol("skipped")
			r.metrics.RecordFailure(string(f.Kind))
			r.l.Warn("symbol skipped",
				applogger.String("symbol", it.symbol),
				applogger.String("stage", "load"),
				applogger.Error(it.err),
			)
			continue
		}
		series[it.symbol] = it.bars
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	r.metrics.RecordLatency("load", time.Since(start).Seconds())
	return series, failures, nil
}

func (r *ScreenRun) persist(ctx context.Context, rep *models.RunReport, events []models.SignalEvent) {
	start := time.Now()
	for _, s := range r.stores {
		if err := s.Save(ctx, events, rep.Signals); err != nil {
			rep.Failures = append(rep.Failures, models.SymbolFailure{
				Stage:  "output:" + s.Name(),
				Kind:   models.FailureIO,
				Reason: err.Error(),
			})
			r.metrics.RecordFailure(string(models.FailureIO))
			r.l.Error("signal store write failed", applogger.String("store", s.Name()), applogger.Error(err))
		}
	}
	if r.publisher != nil && len(rep.Signals) > 0 {
		if err := r.publisher.PublishBatch(ctx, rep.Signals); err != nil {
			rep.Failures = append(rep.Failures, models.SymbolFailure{
				Stage:  "publish",
				Kind:   models.FailureIO,
				Reason: err.Error(),
			})
			r.metrics.RecordFailure(string(models.FailureIO))
			r.l.Error("signal publish failed", applogger.Error(err))
		}
	}
	r.metrics.RecordLatency("persist", time.Since(start).Seconds())
}

func (r *ScreenRun) writeReport(ctx context.Context, rep *models.RunReport) {
	if r.reports == nil {
		return
	}
	if err := r.reports.WriteReport(ctx, rep); err != nil {
		rep.Failures = append(rep.Failures, models.SymbolFailure{
			Stage:  "output:report",
			Kind:   models.FailureIO,
			Reason: err.Error(),
		})
		r.metrics.RecordFailure(string(models.FailureIO))
		r.l.Error("text report write failed", applogger.Error(err))
	}
}

// notify sends the digest and records, but never propagates, a failure.
func (r *ScreenRun) notify(ctx context.Context, rep *models.RunReport) {
	if r.notifier == nil {
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, r.notifyTO)
	defer cancel()
	if err := r.notifier.Send(sendCtx, report.FormatRun(rep)); err != nil {
		if !errors.Is(err, models.ErrNotifier) {
			err = fmt.Errorf("%w: %s: %v", models.ErrNotifier, r.notifier.Name(), err)
		}
		rep.NotifyError = err.Error()
		r.metrics.RecordNotify("error")
		r.l.Error("notify failed", applogger.String("notifier", r.notifier.Name()), applogger.Error(err))
		return
	}
	r.metrics.RecordNotify("ok")
}
