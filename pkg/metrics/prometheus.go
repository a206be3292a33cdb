package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	symbols  *prometheus.CounterVec
	failures *prometheus.CounterVec
	events   *prometheus.CounterVec
	rows     prometheus.Gauge
	notify   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New registers the recorder on the default registry; call it once per process.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the recorder's collectors on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		symbols: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalscan_symbols_total",
				Help: "Symbols processed per run, by outcome",
			},
			[]string{"result"},
		),
		failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalscan_failures_total",
				Help: "Per-symbol failures, by error kind",
			},
			[]string{"kind"},
		),
		events: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalscan_events_total",
				Help: "Signal events detected, by strategy",
			},
			[]string{"strategy"},
		),
		rows: f.NewGauge(prometheus.GaugeOpts{
			Name: "signalscan_signals_rows",
			Help: "Aggregated signal rows in the latest run",
		}),
		notify: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalscan_notify_total",
				Help: "Digest deliveries, by outcome",
			},
			[]string{"result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalscan_stage_duration_seconds",
				Help:    "Duration of run stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

func (r *Recorder) RecordSymbol(result string) {
	r.symbols.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordFailure(kind string) {
	r.failures.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordEvent(strategy string) {
	r.events.WithLabelValues(strategy).Inc()
}

// RecordRows sets, not adds, the row count of the latest run.
func (r *Recorder) RecordRows(n int) {
	r.rows.Set(float64(n))
}

func (r *Recorder) RecordNotify(result string) {
	r.notify.WithLabelValues(result).Inc()
}

// RecordLatency records stage latency in seconds.
func (r *Recorder) RecordLatency(stage string, seconds float64) {
	r.latency.WithLabelValues(stage).Observe(seconds)
}
