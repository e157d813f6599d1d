// Package metrics provides Prometheus instrumentation for the
// acquisition pipeline. The registry is injected; there is no global
// state, so every test can build a fresh set.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's instruments. A nil *Metrics is valid and
// records nothing, so callers never need to guard.
type Metrics struct {
	acquisitions     *prometheus.CounterVec
	fetchLatency     prometheus.Histogram
	validatorRejects *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	emergencyTopUps  prometheus.Counter
}

// New registers the engine's instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		acquisitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assess",
			Subsystem: "acquire",
			Name:      "sets_total",
			Help:      "Question sets acquired, labeled by provenance.",
		}, []string{"provenance"}),
		fetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "assess",
			Subsystem: "acquire",
			Name:      "fetch_duration_seconds",
			Help:      "Remote fetch latency including retries.",
			Buckets:   prometheus.DefBuckets,
		}),
		validatorRejects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assess",
			Subsystem: "acquire",
			Name:      "validator_rejects_total",
			Help:      "Questions rejected by validation, labeled by rule.",
		}, []string{"rule"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assess",
			Subsystem: "acquire",
			Name:      "cache_hits_total",
			Help:      "Cache hits, labeled by tier (memory or file).",
		}, []string{"tier"}),
		emergencyTopUps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "assess",
			Subsystem: "acquire",
			Name:      "emergency_topups_total",
			Help:      "Questions filled in from the emergency generator.",
		}),
	}
}

func (m *Metrics) AcquisitionDone(provenance string) {
	if m == nil {
		return
	}
	m.acquisitions.WithLabelValues(provenance).Inc()
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchLatency.Observe(d.Seconds())
}

func (m *Metrics) ValidatorReject(rule string) {
	if m == nil {
		return
	}
	m.validatorRejects.WithLabelValues(rule).Inc()
}

func (m *Metrics) CacheHit(tier string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(tier).Inc()
}

func (m *Metrics) EmergencyTopUp(n int) {
	if m == nil {
		return
	}
	m.emergencyTopUps.Add(float64(n))
}
