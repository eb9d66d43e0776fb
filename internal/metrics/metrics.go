// Package metrics exposes Prometheus metrics for lookups and upstream requests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains Prometheus metrics for monitoring lookups.
type Metrics struct {
	LookupsTotal     *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	ThemeToggles     prometheus.Counter
	ActiveSessions   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates metrics and registers them with registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gh_lookup_lookups_total",
				Help: "Total number of lookups by outcome",
			},
			[]string{"outcome"}, // success or an error kind
		),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gh_lookup_upstream_requests_total",
				Help: "Total number of GitHub API requests",
			},
			[]string{"endpoint", "outcome"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gh_lookup_upstream_request_duration_seconds",
				Help:    "Latency of GitHub API requests",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint"},
		),
		ThemeToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gh_lookup_theme_toggles_total",
			Help: "Total number of theme toggles",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gh_lookup_active_sessions",
			Help: "Current number of browser sessions with a display",
		}),
		gatherer: registry,
	}

	registry.MustRegister(
		m.LookupsTotal,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.ThemeToggles,
		m.ActiveSessions,
	)

	return m
}

// RecordLookup counts one finished lookup.
func (m *Metrics) RecordLookup(outcome string) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one upstream request.
func (m *Metrics) ObserveRequest(endpoint, outcome string, duration time.Duration) {
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordThemeToggle counts one theme toggle.
func (m *Metrics) RecordThemeToggle() {
	m.ThemeToggles.Inc()
}

// SetActiveSessions reports the current session count.
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
