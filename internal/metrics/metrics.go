// Package metrics holds the Prometheus instrumentation of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdg7_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sdg7_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sdg7_api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	// Aggregator Metrics
	ViewComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdg7_view_computations_total",
			Help: "Total number of derived view computations",
		},
		[]string{"view", "result"}, // result: ok, error, not_applicable
	)

	ViewDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sdg7_view_duration_seconds",
			Help:    "Duration of derived view computations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"view"},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sdg7_dataset_rows",
			Help: "Rows in the loaded tables",
		},
		[]string{"table"}, // observations, predictions
	)

	DatasetLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdg7_dataset_loads_total",
			Help: "Dataset load attempts",
		},
		[]string{"result"}, // loaded, cached, error
	)

	// Export Metrics
	ExportJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdg7_export_jobs_total",
			Help: "Total number of export jobs by format and final status",
		},
		[]string{"format", "status"},
	)

	ExportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdg7_export_rows_total",
			Help: "Rows written by export jobs",
		},
		[]string{"format"},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sdg7_export_duration_seconds",
			Help:    "Duration of export jobs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records an API request with status and duration
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordView records one derived view computation
func RecordView(view, result string, duration time.Duration) {
	ViewComputations.WithLabelValues(view, result).Inc()
	ViewDuration.WithLabelValues(view).Observe(duration.Seconds())
}

// RecordDatasetLoad records a load attempt and, on success, the table sizes
func RecordDatasetLoad(result string, observations, predictions int) {
	DatasetLoads.WithLabelValues(result).Inc()
	if result == "error" {
		return
	}
	DatasetRows.WithLabelValues("observations").Set(float64(observations))
	DatasetRows.WithLabelValues("predictions").Set(float64(predictions))
}

// RecordExport records a finished export job
func RecordExport(format, status string, rows int, duration time.Duration) {
	ExportJobs.WithLabelValues(format, status).Inc()
	ExportDuration.WithLabelValues(format).Observe(duration.Seconds())
	if rows > 0 {
		ExportRows.WithLabelValues(format).Add(float64(rows))
	}
}
