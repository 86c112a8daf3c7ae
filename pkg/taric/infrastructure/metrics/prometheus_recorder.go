// Package metrics implements the pipeline instrumentation with Prometheus
// and OpenTelemetry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/tigerroll/tamato/pkg/taric/core/metrics"
)

// PrometheusRecorder implements metrics.Recorder on a private registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	chunksWritten  *prometheus.CounterVec
	chunkStatus    *prometheus.CounterVec
	issues         *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
	importMessages *prometheus.CounterVec
	commitDuration *prometheus.HistogramVec
	batchStatus    *prometheus.CounterVec
}

// NewPrometheusRecorder registers the importer collectors plus the Go and
// process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		chunksWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taric_chunks_written_total",
			Help: "Chunks written by the chunker.",
		}, []string{"batch"}),
		chunkStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taric_chunk_status_total",
			Help: "Chunk status transitions.",
		}, []string{"status"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taric_import_issues_total",
			Help: "Import issues by severity and object tag.",
		}, []string{"severity", "object_type"}),
		importDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taric_import_duration_seconds",
			Help:    "Duration of one importer run over a chunk.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		importMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taric_import_messages_total",
			Help: "Parsed messages by importer status.",
		}, []string{"status"}),
		commitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taric_commit_duration_seconds",
			Help:    "Duration of commits by outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		batchStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taric_batch_status_total",
			Help: "Import batches reaching a terminal status.",
		}, []string{"status"}),
	}

	registry.MustRegister(
		r.chunksWritten,
		r.chunkStatus,
		r.issues,
		r.importDuration,
		r.importMessages,
		r.commitDuration,
		r.batchStatus,
	)
	return r
}

// Registry returns the registry backing the recorder.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *PrometheusRecorder) RecordChunks(batch string, count int) {
	r.chunksWritten.WithLabelValues(batch).Add(float64(count))
}

func (r *PrometheusRecorder) RecordChunkStatus(status string) {
	r.chunkStatus.WithLabelValues(status).Inc()
}

func (r *PrometheusRecorder) RecordIssue(severity, objectType string) {
	r.issues.WithLabelValues(severity, objectType).Inc()
}

func (r *PrometheusRecorder) ObserveImport(status string, messages int, elapsed time.Duration) {
	r.importDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	r.importMessages.WithLabelValues(status).Add(float64(messages))
}

func (r *PrometheusRecorder) ObserveCommit(outcome string, elapsed time.Duration) {
	r.commitDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (r *PrometheusRecorder) RecordBatchStatus(status string) {
	r.batchStatus.WithLabelValues(status).Inc()
}

var _ coremetrics.Recorder = (*PrometheusRecorder)(nil)
