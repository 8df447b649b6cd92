package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses (the MCP endpoint) working through the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *HttpStatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time a job spent in a worker, by final status.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	//dependencyLatency.WithLabelValues(label).Observe(time.Since(timeElapsed).Seconds())
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

var ingestChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "docqa_ingest_chunks_total",
	Help: "Chunks produced by the chunker across all ingestions.",
})

var ingestSectionsSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "docqa_ingest_sections_skipped_total",
	Help: "Chunks dropped because the embedding provider returned no vector.",
})

var retrievalTierHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "docqa_retrieval_tier_hits_total",
	Help: "Which retrieval tier produced the matches. Tier \"none\" means every tier came back empty.",
}, []string{"tier"})

var DocumentsByStatus = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "docqa_documents_by_status_total",
	Help: "Document status transitions, counted as they are written.",
}, []string{"status"})

func CaptureIngestChunks(chunks, skipped int) {
	ingestChunksTotal.Add(float64(chunks))
	ingestSectionsSkipped.Add(float64(skipped))
}

func CaptureRetrievalTier(tier string) {
	retrievalTierHits.WithLabelValues(tier).Inc()
}

func CaptureDocumentStatus(status string) {
	DocumentsByStatus.WithLabelValues(status).Inc()
}
