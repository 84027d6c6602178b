package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the voice gender service.
type Metrics struct {
	// Classification metrics
	Classifications    *prometheus.CounterVec
	ClassificationTime prometheus.Histogram
	GenderScore        prometheus.Histogram
	AggregatedF0       prometheus.Histogram

	// Preprocessing metrics
	PreprocessTime      prometheus.Histogram
	IsolationFallbacks  prometheus.Counter
	PreprocessFailures  prometheus.Counter

	// Window analysis metrics
	WindowsAnalyzed prometheus.Counter
	WindowsRejected prometheus.Counter

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		// Classification metrics
		Classifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicegender_classifications_total",
			Help: "Total number of completed classifications by label",
		}, []string{"label"}),
		ClassificationTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicegender_classification_duration_seconds",
			Help:    "End-to-end duration of classification runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~8.5 minutes
		}),
		GenderScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicegender_score",
			Help:    "Signed gender score of completed classifications",
			Buckets: prometheus.LinearBuckets(-2, 0.5, 11), // -2.0 to 3.0
		}),
		AggregatedF0: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicegender_aggregated_f0_hz",
			Help:    "Aggregated median fundamental frequency of classified clips",
			Buckets: prometheus.LinearBuckets(50, 25, 11), // 50 Hz to 300 Hz
		}),

		// Preprocessing metrics
		PreprocessTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicegender_preprocess_duration_seconds",
			Help:    "Duration of audio preprocessing runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		IsolationFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicegender_isolation_fallbacks_total",
			Help: "Total number of runs that fell back to direct conversion",
		}),
		PreprocessFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicegender_preprocess_failures_total",
			Help: "Total number of runs where preprocessing failed entirely",
		}),

		// Window analysis metrics
		WindowsAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicegender_windows_analyzed_total",
			Help: "Total number of analysis windows that yielded features",
		}),
		WindowsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicegender_windows_rejected_total",
			Help: "Total number of analysis windows rejected as unusable",
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicegender_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicegender_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicegender_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordClassification records a completed classification run.
func (m *Metrics) RecordClassification(label string, score, f0, durationSeconds float64) {
	m.Classifications.WithLabelValues(label).Inc()
	m.ClassificationTime.Observe(durationSeconds)
	m.GenderScore.Observe(score)
	m.AggregatedF0.Observe(f0)
}

// RecordPreprocess records a preprocessing run.
func (m *Metrics) RecordPreprocess(durationSeconds float64, isolated bool) {
	m.PreprocessTime.Observe(durationSeconds)
	if !isolated {
		m.IsolationFallbacks.Inc()
	}
}

// RecordPreprocessFailure records a run where both isolation and fallback failed.
func (m *Metrics) RecordPreprocessFailure() {
	m.PreprocessFailures.Inc()
}

// RecordWindow records the outcome of one analysis window.
func (m *Metrics) RecordWindow(usable bool) {
	if usable {
		m.WindowsAnalyzed.Inc()
	} else {
		m.WindowsRejected.Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error.
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
