package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the service emits. Its methods satisfy the
// prediction service's Metrics interface.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Inference
	InferenceDuration  HistogramVec
	InferenceBatchSize HistogramVec
	PredictionsTotal   CounterVec

	// Solvent graph cache
	SolventCacheHitsTotal   CounterVec
	SolventCacheMissesTotal CounterVec

	// Batch worker
	WorkerJobsTotal   CounterVec
	WorkerJobDuration HistogramVec

	ErrorsTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets      = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultInferenceDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30}
	DefaultBatchSizeBuckets         = []float64{1, 2, 4, 8, 16, 32, 64, 128, 256}
	DefaultJobDurationBuckets       = []float64{.1, .5, 1, 5, 10, 30, 60, 300}
)

// NewAppMetrics registers all service metrics on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path"),
		HTTPActiveRequests:  collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method"),

		InferenceDuration:  collector.RegisterHistogram("inference_duration_seconds", "Model forward pass duration", DefaultInferenceDurationBuckets),
		InferenceBatchSize: collector.RegisterHistogram("inference_batch_size", "Solute/solvent pairs per forward pass", DefaultBatchSizeBuckets),
		PredictionsTotal:   collector.RegisterCounter("predictions_total", "Completed predictions"),

		SolventCacheHitsTotal:   collector.RegisterCounter("solvent_cache_hits_total", "Solvent graph cache hits"),
		SolventCacheMissesTotal: collector.RegisterCounter("solvent_cache_misses_total", "Solvent graph cache misses"),

		WorkerJobsTotal:   collector.RegisterCounter("worker_jobs_total", "Batch jobs processed", "status"),
		WorkerJobDuration: collector.RegisterHistogram("worker_job_duration_seconds", "Batch job duration", DefaultJobDurationBuckets),

		ErrorsTotal: collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code"),
	}
}

// ObserveInference records one model forward pass.
func (m *AppMetrics) ObserveInference(batchSize int, d time.Duration) {
	m.InferenceDuration.WithLabelValues().Observe(d.Seconds())
	m.InferenceBatchSize.WithLabelValues().Observe(float64(batchSize))
	m.PredictionsTotal.WithLabelValues().Add(float64(batchSize))
}

// SolventCacheHit records a solvent graph cache hit.
func (m *AppMetrics) SolventCacheHit() {
	m.SolventCacheHitsTotal.WithLabelValues().Inc()
}

// SolventCacheMiss records a solvent graph cache miss.
func (m *AppMetrics) SolventCacheMiss() {
	m.SolventCacheMissesTotal.WithLabelValues().Inc()
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordWorkerJob records a completed or failed batch job.
func (m *AppMetrics) RecordWorkerJob(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.WorkerJobsTotal.WithLabelValues(status).Inc()
	m.WorkerJobDuration.WithLabelValues().Observe(duration.Seconds())
}

// RecordError counts one error against a component.
func (m *AppMetrics) RecordError(component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
