// Package metrics exposes Prometheus collectors for the prediction service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vuelos"

// Metrics bundles the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	predictions      *prometheus.CounterVec
	errors           *prometheus.CounterVec
	unmatched        *prometheus.CounterVec
	predictorLatency prometheus.Histogram
	predictorCalls   *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.predictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Completed predictions by risk band",
	}, []string{"band"})
	m.errors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_errors_total",
		Help:      "Failed predictions by error kind",
	}, []string{"kind"})
	m.unmatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unmatched_categories_total",
		Help:      "Codes the model never saw, by category column prefix",
	}, []string{"category"})
	m.predictorLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "predictor_latency_seconds",
		Help:      "Time spent waiting for the predictor",
		Buckets:   prometheus.DefBuckets,
	})
	m.predictorCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictor_calls_total",
		Help:      "Predictor calls by status",
	}, []string{"status"})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	m.registry.MustRegister(
		m.predictions,
		m.errors,
		m.unmatched,
		m.predictorLatency,
		m.predictorCalls,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePrediction counts a successful prediction and its unseen codes.
func (m *Metrics) ObservePrediction(band string, unmatched []string) {
	m.predictions.WithLabelValues(band).Inc()
	for _, col := range unmatched {
		m.unmatched.WithLabelValues(columnPrefix(col)).Inc()
	}
}

// ObserveError counts a failed prediction.
func (m *Metrics) ObserveError(kind string) {
	m.errors.WithLabelValues(kind).Inc()
}

// ObservePredictorCall records one predictor round trip.
func (m *Metrics) ObservePredictorCall(d time.Duration, err error) {
	m.predictorLatency.Observe(d.Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.predictorCalls.WithLabelValues(status).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, code string, d time.Duration) {
	m.httpRequests.WithLabelValues(route, code).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// columnPrefix keeps label cardinality bounded: "PortFrom_JFK" -> "PortFrom".
func columnPrefix(col string) string {
	for i := 0; i < len(col); i++ {
		if col[i] == '_' {
			return col[:i]
		}
	}
	return col
}
