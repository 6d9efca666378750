package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and the
// advisory pipeline.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	allocationsTotal prometheus.Counter
	projectionsTotal prometheus.Counter
	llmCallsTotal    *prometheus.CounterVec
	llmCallDuration  *prometheus.HistogramVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "advisor",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "advisor",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	allocationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "advisor",
		Subsystem: "pipeline",
		Name:      "allocations_total",
		Help:      "Total number of portfolio allocations computed.",
	})

	projectionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "advisor",
		Subsystem: "pipeline",
		Name:      "projections_total",
		Help:      "Total number of Monte-Carlo price projections run.",
	})

	llmCallsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "advisor",
		Subsystem: "llm",
		Name:      "calls_total",
		Help:      "Total collaborator calls by call name and outcome.",
	}, []string{"call", "outcome"})

	llmCallDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "advisor",
		Subsystem: "llm",
		Name:      "call_duration_seconds",
		Help:      "Latency distribution for collaborator calls.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"call"})

	for _, c := range []prometheus.Collector{
		requestDuration, requestTotal,
		allocationsTotal, projectionsTotal,
		llmCallsTotal, llmCallDuration,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:         registry,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		allocationsTotal: allocationsTotal,
		projectionsTotal: projectionsTotal,
		llmCallsTotal:    llmCallsTotal,
		llmCallDuration:  llmCallDuration,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// AllocationComputed counts one completed portfolio allocation.
func (c *Collector) AllocationComputed() {
	c.allocationsTotal.Inc()
}

// ProjectionRun counts one completed price projection.
func (c *Collector) ProjectionRun() {
	c.projectionsTotal.Inc()
}

// RecordCall implements the collaborator call recorder.
func (c *Collector) RecordCall(call string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.llmCallsTotal.WithLabelValues(call, outcome).Inc()
	c.llmCallDuration.WithLabelValues(call).Observe(duration.Seconds())
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
