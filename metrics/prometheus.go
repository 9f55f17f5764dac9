package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder reports server metrics using Prometheus primitives.
type PrometheusRecorder struct {
	generations *prometheus.CounterVec
	genLatency  *prometheus.HistogramVec
	requests    *prometheus.CounterVec
	reqLatency  *prometheus.HistogramVec
}

func NewPrometheusRecorder(registry *prometheus.Registry) (*PrometheusRecorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &PrometheusRecorder{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_optimizer_generations_total",
			Help: "Total number of content generation submissions by outcome",
		}, []string{"outcome"}),
		genLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "content_optimizer_generation_duration_seconds",
			Help:    "Content generation latency in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_optimizer_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		reqLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "content_optimizer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	for _, collector := range []prometheus.Collector{r.generations, r.genLatency, r.requests, r.reqLatency} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) ObserveGeneration(outcome string, duration time.Duration) {
	r.generations.WithLabelValues(outcome).Inc()
	r.genLatency.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.reqLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
