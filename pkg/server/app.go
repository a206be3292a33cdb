package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SignalScan/internal/domain/models"
	"SignalScan/internal/repository"
	"SignalScan/pkg/config"
	xhttp "SignalScan/pkg/http"
	applogger "SignalScan/pkg/logger"
)

// Modes accepted by App.Run.
const (
	ModeRun   = "run"
	ModeServe = "serve"
	ModePrep  = "prep"
)

// Runner executes one screening run as of now.
type Runner interface {
	Run(ctx context.Context, now time.Time) (*models.RunReport, error)
}

// App encapsulates the application lifecycle.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	runner      Runner
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
	now         func() time.Time
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, runner Runner, handler xhttp.Handler) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, runner: runner, httpHandler: handler, now: time.Now}
}

// Run executes mode and blocks until it finishes or ctx is cancelled.
func (a *App) Run(ctx context.Context, mode string) error {
	switch mode {
	case ModeRun, "":
		return a.RunOnce(ctx)
	case ModeServe:
		return a.Serve(ctx)
	default:
		return fmt.Errorf("%w: unknown mode %q", models.ErrInvalidConfig, mode)
	}
}

// RunOnce performs a single point-in-time run.
func (a *App) RunOnce(ctx context.Context) error {
	rep, err := a.runner.Run(ctx, a.now())
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	a.l.Info("screening finished",
		applogger.Int("signals", len(rep.Signals)),
		applogger.Int("failures", len(rep.Failures)),
		applogger.Time("run_at", rep.RunAt),
	)
	return nil
}

// Serve starts the HTTP API and runs the pipeline every schedule interval
// until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	a.httpServer = xhttp.NewServer([]xhttp.Handler{a.httpHandler},
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.l),
	)
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	a.l.Info("scheduler started",
		applogger.Duration("interval_ms", a.cfg.Schedule.Interval),
		applogger.Bool("run_on_start", a.cfg.Schedule.RunOnStart),
	)
	if a.cfg.Schedule.RunOnStart {
		a.tick(ctx)
	}
	ticker := time.NewTicker(a.cfg.Schedule.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.l.Info("shutdown signal received")
			return a.shutdown()
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

// tick runs once; a held lock or a failed run is logged and the schedule goes on.
func (a *App) tick(ctx context.Context) {
	_, err := a.runner.Run(ctx, a.now())
	switch {
	case err == nil:
	case errors.Is(err, models.ErrRunInProgress):
		a.l.Warn("scheduled run skipped, another run holds the lock")
	case ctx.Err() != nil:
	default:
		a.l.Error("scheduled run failed", applogger.Error(err))
	}
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.l.Info("shutdown complete")
	return nil
}

// Prep normalises raw exported CSVs from rawDir into screenable files in outDir.
func Prep(ctx context.Context, cfg *config.Config, rawDir, outDir string, l *applogger.Logger) error {
	if outDir == "" {
		outDir = cfg.Source.DataDir
	}
	rep, err := repository.PrepareDir(ctx, rawDir, outDir, cfg.Source.Pattern, l)
	if err != nil {
		return fmt.Errorf("prep: %w", err)
	}
	if len(rep.Failures) > 0 {
		return fmt.Errorf("prep: %d of %d files failed", len(rep.Failures), rep.Files+len(rep.Failures))
	}
	return nil
}
