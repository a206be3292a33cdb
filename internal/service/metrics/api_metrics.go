package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	RunsTriggered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalscan",
			Subsystem: "api",
			Name:      "runs_triggered_total",
			Help:      "Runs requested over the API, by outcome",
		},
		[]string{"result"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalscan",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Error responses by endpoint",
		},
		[]string{"endpoint"},
	)

	DigestCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalscan",
			Subsystem: "api",
			Name:      "digest_cache_total",
			Help:      "Digest cache lookups, by hit or miss",
		},
		[]string{"result"},
	)
)

// Register adds the API collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(RunsTriggered, APIErrors, DigestCache)
	})
}
