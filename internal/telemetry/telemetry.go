// Package telemetry exposes the service's Prometheus metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters the orchestrator and poller report into.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	PollAttempts       prometheus.Counter
	EnrichmentFailures prometheus.Counter
	EnrichmentHalts    prometheus.Counter
	CacheReads         *prometheus.CounterVec
}

// NewMetrics builds and registers all service metrics on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "briefer_runs_total",
			Help: "Briefing runs by data path and outcome.",
		}, []string{"path", "status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "briefer_run_duration_seconds",
			Help:    "Wall-clock duration of briefing runs.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		PollAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "briefer_task_polls_total",
			Help: "Poll requests issued against the remote task service.",
		}),
		EnrichmentFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "briefer_enrichment_failures_total",
			Help: "Per-item illustration failures (non-fatal).",
		}),
		EnrichmentHalts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "briefer_enrichment_halts_total",
			Help: "Enrichment loops halted early by a credential failure.",
		}),
		CacheReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "briefer_cache_reads_total",
			Help: "Briefing cache reads by outcome (ok, empty, malformed).",
		}, []string{"kind"}),
	}
	registry.MustRegister(m.RunsTotal, m.RunDuration, m.PollAttempts, m.EnrichmentFailures, m.EnrichmentHalts, m.CacheReads)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
