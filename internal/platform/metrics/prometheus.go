package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the service's Prometheus collectors on a private registry.
type Manager struct {
	Registry         *prometheus.Registry
	RequestsTotal    *prometheus.CounterVec
	RequestLatency   *prometheus.HistogramVec
	RateLimitedTotal *prometheus.CounterVec
	UploadsTotal     *prometheus.CounterVec
}

func NewManager(namespace string) *Manager {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	rateLimitedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter, by policy.",
	}, []string{"policy"})

	uploadsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Uploaded files by document field and result.",
	}, []string{"field", "result"})

	registry.MustRegister(
		requestsTotal,
		requestLatency,
		rateLimitedTotal,
		uploadsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:         registry,
		RequestsTotal:    requestsTotal,
		RequestLatency:   requestLatency,
		RateLimitedTotal: rateLimitedTotal,
		UploadsTotal:     uploadsTotal,
	}
}

func (m *Manager) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Manager) RateLimited(policy string) {
	m.RateLimitedTotal.WithLabelValues(policy).Inc()
}

func (m *Manager) UploadObserved(field string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.UploadsTotal.WithLabelValues(field, result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
