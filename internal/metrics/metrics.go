// Package metrics wires Prometheus instrumentation on its own registry:
// HTTP request metrics, screen transition counts, and an orders gauge.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garra-os/backend/internal/models"
)

type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	transitionTotal *prometheus.CounterVec
}

// New registers the core collectors. orderCount feeds the orders gauge.
func New(orderCount func() int) *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	transitionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "screen_transitions_total",
		Help: "Total screen transitions by source and target screen",
	}, []string{"from", "to"})

	ordersGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "service_orders_total",
		Help: "Number of service orders currently in the store",
	}, func() float64 {
		return float64(orderCount())
	})

	registry.MustRegister(requestDuration, requestTotal, transitionTotal, ordersGauge)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		transitionTotal: transitionTotal,
	}
}

func (m *Metrics) Handler() http.Handler {
	return m.handler
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(d.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

func (m *Metrics) ObserveTransition(from, to models.Screen) {
	m.transitionTotal.WithLabelValues(string(from), string(to)).Inc()
}
