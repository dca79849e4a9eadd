package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// session core.
type Metrics struct {
	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Forecast fetch metrics.
	ForecastFetches       *prometheus.CounterVec   // labels: mode={initial,refresh}, outcome={success,error}
	ForecastFetchDuration *prometheus.HistogramVec // labels: mode={initial,refresh}
	StaleResultsDropped   prometheus.Counter

	// Session lifecycle metrics.
	SessionReloads    prometheus.Counter
	SessionReady      prometheus.Gauge
	PersistenceErrors prometheus.Counter
}

// NewMetrics creates and registers all session metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skycast",
			Name:      "geocode_requests_total",
			Help:      "Geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skycast",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		ForecastFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skycast",
			Name:      "forecast_fetches_total",
			Help:      "Forecast fetches by mode and outcome.",
		}, []string{"mode", "outcome"}),
		ForecastFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skycast",
			Name:      "forecast_fetch_duration_seconds",
			Help:      "Forecast API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"mode"}),
		StaleResultsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skycast",
			Name:      "stale_results_dropped_total",
			Help:      "Async completions discarded because their cycle was superseded.",
		}),
		SessionReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skycast",
			Name:      "session_reloads_total",
			Help:      "Scheduled full session reloads.",
		}),
		SessionReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skycast",
			Name:      "session_ready",
			Help:      "1 when the session has initialized from persistence, 0 otherwise.",
		}),
		PersistenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skycast",
			Name:      "persistence_errors_total",
			Help:      "Best-effort storage operations that failed and were swallowed.",
		}),
	}

	prometheus.MustRegister(
		m.GeocodeRequests,
		m.GeocodeCache,
		m.ForecastFetches,
		m.ForecastFetchDuration,
		m.StaleResultsDropped,
		m.SessionReloads,
		m.SessionReady,
		m.PersistenceErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		GeocodeRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "skycast", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "skycast", Name: "geocode_cache_total"}, []string{"result"}),
		ForecastFetches:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "skycast", Name: "forecast_fetches_total"}, []string{"mode", "outcome"}),
		ForecastFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "skycast", Name: "forecast_fetch_duration_seconds"}, []string{"mode"}),
		StaleResultsDropped:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "skycast", Name: "stale_results_dropped_total"}),
		SessionReloads:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "skycast", Name: "session_reloads_total"}),
		SessionReady:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "skycast", Name: "session_ready"}),
		PersistenceErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "skycast", Name: "persistence_errors_total"}),
	}
}
