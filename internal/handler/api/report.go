package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"SignalScan/internal/domain/models"
	domrepo "SignalScan/internal/domain/repository"
	"SignalScan/internal/service/cache"
	apimetrics "SignalScan/internal/service/metrics"
	"SignalScan/internal/service/ratelimit"
	"SignalScan/internal/services/report"
	xhttp "SignalScan/pkg/http"
	xlogger "SignalScan/pkg/logger"
	xutil "SignalScan/pkg/util"
)

const digestKey = "digest:latest"

// Runner executes one screening run as of now.
type Runner interface {
	Run(ctx context.Context, now time.Time) (*models.RunReport, error)
}

// ReportHandler serves the latest run and lets operators trigger a new one.
type ReportHandler struct {
	logger    *xlogger.Logger
	snapshot  domrepo.SnapshotStore
	runner    Runner
	digest    cache.BytesCache
	digestTTL time.Duration
	limiter   *ratelimit.Limiter
	runWait   time.Duration
	runTO     time.Duration
	now       func() time.Time
}

// Option configures ReportHandler.
type Option func(*ReportHandler)

// WithDigestCache caches the rendered digest for ttl.
func WithDigestCache(c cache.BytesCache, ttl time.Duration) Option {
	return func(h *ReportHandler) {
		h.digest = c
		h.digestTTL = ttl
	}
}

// WithRunLimiter rate limits POST /api/runs per client IP.
func WithRunLimiter(l *ratelimit.Limiter) Option {
	return func(h *ReportHandler) { h.limiter = l }
}

// WithRunWait bounds how long POST /api/runs waits before answering 202.
func WithRunWait(wait, timeout time.Duration) Option {
	return func(h *ReportHandler) {
		if wait > 0 {
			h.runWait = wait
		}
		if timeout > 0 {
			h.runTO = timeout
		}
	}
}

func NewReportHandler(logger *xlogger.Logger, snapshot domrepo.SnapshotStore, runner Runner, opts ...Option) *ReportHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	apimetrics.Register()
	h := &ReportHandler{
		logger:    logger,
		snapshot:  snapshot,
		runner:    runner,
		digest:    cache.NewTTLCache(),
		digestTTL: 15 * time.Second,
		runWait:   5 * time.Second,
		runTO:     10 * time.Minute,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ReportHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/report", h.Report)
	g.GET("/report/digest", h.Digest)
	g.GET("/signals", h.Signals)
	if h.runner != nil {
		g.POST("/runs", h.TriggerRun)
	}
}

// Report returns the latest RunReport.
func (h *ReportHandler) Report(c echo.Context) error {
	rep, err := h.snapshot.Latest(c.Request().Context())
	if err != nil {
		return h.fail(c, "report", err)
	}
	return xhttp.SuccessResponse(c, rep)
}

// Digest returns the latest digest as plain text, as it was sent to chat.
func (h *ReportHandler) Digest(c echo.Context) error {
	if b, ok, err := h.digest.GetBytes(digestKey); err == nil && ok {
		apimetrics.DigestCache.WithLabelValues("hit").Inc()
		return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, b)
	} else if err != nil {
		h.logger.Warn("digest cache read", xlogger.Error(err))
	}
	apimetrics.DigestCache.WithLabelValues("miss").Inc()

	rep, err := h.snapshot.Latest(c.Request().Context())
	if err != nil {
		return h.fail(c, "digest", err)
	}
	b := []byte(report.FormatRun(rep))
	if err := h.digest.SetBytes(digestKey, b, h.digestTTL); err != nil {
		h.logger.Warn("digest cache write", xlogger.Error(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, b)
}

// Signals filters the latest aggregated rows; table order is preserved.
func (h *ReportHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		apimetrics.APIErrors.WithLabelValues("signals").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	var since time.Time
	if req.Since != "" {
		t, ok := xutil.ParseTime(req.Since)
		if !ok {
			return h.fail(c, "signals", xhttp.BadRequestErrorf("since %q is not a date or datetime", req.Since))
		}
		since = t
	}

	rep, err := h.snapshot.Latest(c.Request().Context())
	if err != nil {
		return h.fail(c, "signals", err)
	}
	rows := FilterSignals(rep.Signals, req.Symbol, req.Strategy, since)
	total := int64(len(rows))
	if len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}
	return xhttp.ListResponse(c, rows, total)
}

// TriggerRun starts a run. A run that finishes within the wait answers 200
// with its summary; a slower one keeps going and answers 202.
func (h *ReportHandler) TriggerRun(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		apimetrics.RunsTriggered.WithLabelValues("rate_limited").Inc()
		return h.fail(c, "runs", xhttp.TooManyRequestsError("run trigger rate limit exceeded"))
	}

	type result struct {
		rep *models.RunReport
		err error
	}
	done := make(chan result, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), h.runTO)
		defer cancel()
		rep, err := h.runner.Run(ctx, h.now())
		if err == nil {
			_ = h.digest.Delete(digestKey)
		}
		done <- result{rep, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			apimetrics.RunsTriggered.WithLabelValues("error").Inc()
			return h.fail(c, "runs", res.err)
		}
		apimetrics.RunsTriggered.WithLabelValues("ok").Inc()
		return xhttp.SuccessResponse(c, summarize(res.rep))
	case <-time.After(h.runWait):
		apimetrics.RunsTriggered.WithLabelValues("pending").Inc()
		go func() {
			if res := <-done; res.err != nil {
				h.logger.Error("triggered run failed", xlogger.Error(res.err))
			}
		}()
		return xhttp.AcceptedResponse(c, &models.RunResponse{Pending: true})
	}
}

func (h *ReportHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := xhttp.FromDomain(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("api error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	}
	apimetrics.APIErrors.WithLabelValues(endpoint).Inc()
	return xhttp.AppErrorResponse(c, appErr)
}

// FilterSignals keeps rows matching symbol (case-insensitive), strategy and
// a timestamp at or after since. Empty filters match everything.
func FilterSignals(rows []models.AggregatedSignal, symbol, strategy string, since time.Time) []models.AggregatedSignal {
	out := make([]models.AggregatedSignal, 0, len(rows))
	for _, r := range rows {
		if symbol != "" && !strings.EqualFold(r.Symbol, symbol) {
			continue
		}
		if strategy != "" && !r.Has(strategy) {
			continue
		}
		if !since.IsZero() && r.Timestamp.Before(since) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func summarize(rep *models.RunReport) *models.RunResponse {
	return &models.RunResponse{
		RunAt:       rep.RunAt.UTC().Format(time.RFC3339),
		Symbols:     rep.Symbols,
		Events:      rep.Events,
		Signals:     len(rep.Signals),
		Skipped:     rep.Skipped(),
		NotifyError: rep.NotifyError,
	}
}
