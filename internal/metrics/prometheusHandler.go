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

var vectorizedMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vectorized_messages_total",
	Help: "Messages durably upserted into the vector index",
})

var ingestionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ingestion_failures_total",
	Help: "Messages that failed ingestion and stay pending",
})

var fallbackInvocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "completion_fallback_invocations_total",
	Help: "How often the primary completion tier failed over to the fallback",
})

var sweepPageSize = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "sweep_page_size",
	Help:    "Pending messages picked up per sweep",
	Buckets: []float64{0, 1, 5, 10, 25, 50},
})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls and pipeline steps.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush passes through so SSE handlers can stream from behind the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func AddVectorizedMessages(n int) {
	vectorizedMessagesTotal.Add(float64(n))
}

func AddIngestionFailures(n int) {
	ingestionFailuresTotal.Add(float64(n))
}

func IncrementFallbackInvocations() {
	fallbackInvocationsTotal.Inc()
}

func ObserveSweepSize(n int) {
	sweepPageSize.Observe(float64(n))
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
