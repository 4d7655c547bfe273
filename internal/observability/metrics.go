package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hko_weather"

// Metrics holds the Prometheus counters, histograms, and gauges for API access
// and humidity checks.
type Metrics struct {
	// API transport metrics.
	APIAttempts        *prometheus.CounterVec   // labels: endpoint, outcome={success,http_error,transport_error,decode_error}
	APIRetries         *prometheus.CounterVec   // labels: endpoint
	APIRequestDuration *prometheus.HistogramVec // labels: endpoint

	// Forecast cache metrics.
	ForecastCache *prometheus.CounterVec // labels: result={hit,miss}

	// Humidity check metrics.
	HumidityChecks  *prometheus.CounterVec // labels: result={valid,invalid,unavailable}
	ReportsProduced prometheus.Counter
	PublishErrors   prometheus.Counter
	MonitorRunning  prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.APIAttempts,
		m.APIRetries,
		m.APIRequestDuration,
		m.ForecastCache,
		m.HumidityChecks,
		m.ReportsProduced,
		m.PublishErrors,
		m.MonitorRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		APIAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_attempts_total",
			Help:      "HKO API request attempts by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		APIRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_retries_total",
			Help:      "HKO API retries scheduled after a retryable failure.",
		}, []string{"endpoint"}),
		APIRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of a single HKO API attempt in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		ForecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_cache_total",
			Help:      "9-day forecast cache lookups by result.",
		}, []string{"result"}),
		HumidityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "humidity_checks_total",
			Help:      "Humidity checks by result.",
		}, []string{"result"}),
		ReportsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_produced_total",
			Help:      "Humidity reports published.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Humidity reports that failed to publish.",
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitor_running",
			Help:      "1 when the humidity monitor is active, 0 when shut down.",
		}),
	}
}
