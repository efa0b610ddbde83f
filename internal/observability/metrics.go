package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast service.
type Metrics struct {
	// Refresh loop metrics.
	RefreshTotal      prometheus.Counter
	RefreshErrors     prometheus.Counter
	RefreshDuration   prometheus.Histogram
	ForecasterRunning prometheus.Gauge

	// Prediction metrics.
	PredictionsComputed prometheus.Counter
	WindowsDetected     *prometheus.CounterVec // labels: result={session,none}
	StormDays           prometheus.Counter

	// Upstream fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: station={site,reference}, mode={forecast,archive}, outcome={success,error}
	FetchCache    *prometheus.CounterVec   // labels: result={hit,miss}
	FetchDuration *prometheus.HistogramVec // labels: mode={forecast,archive}

	// Digest publishing metrics.
	DigestsPublished prometheus.Counter
	DigestErrors     prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefreshTotal,
		m.RefreshErrors,
		m.RefreshDuration,
		m.ForecasterRunning,
		m.PredictionsComputed,
		m.WindowsDetected,
		m.StormDays,
		m.FetchRequests,
		m.FetchCache,
		m.FetchDuration,
		m.DigestsPublished,
		m.DigestErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kitecast",
			Name:      "refresh_total",
			Help:      "Total forecast refresh attempts.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kitecast",
			Name:      "refresh_errors_total",
			Help:      "Total failed forecast refreshes.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kitecast",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-normalize-predict refresh.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ForecasterRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kitecast",
			Name:      "forecaster_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		PredictionsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kitecast",
			Name:      "predictions_computed_total",
			Help:      "Total hourly predictions computed.",
		}),
		WindowsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitecast",
			Name:      "windows_detected_total",
			Help:      "Kiteable window detections by result.",
		}, []string{"result"}),
		StormDays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kitecast",
			Name:      "storm_days_total",
			Help:      "Forecast days flagged with a danger-storm hour.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitecast",
			Name:      "fetch_requests_total",
			Help:      "Upstream fetch requests by station, mode, and outcome.",
		}, []string{"station", "mode", "outcome"}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitecast",
			Name:      "fetch_cache_total",
			Help:      "Fetch cache lookups by result.",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kitecast",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"mode"}),
		DigestsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kitecast",
			Name:      "digests_published_total",
			Help:      "Kite-window digest messages published to Kafka.",
		}),
		DigestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kitecast",
			Name:      "digest_errors_total",
			Help:      "Failed kite-window digest publishes.",
		}),
	}
}
