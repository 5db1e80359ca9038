// Package metrics exposes Prometheus counters for expense creation and an
// HTTP request histogram, registered on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "expenses"

type Metrics struct {
	registry *prometheus.Registry

	expensesCreated *prometheus.CounterVec
	splitRejections *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		expensesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "Expenses persisted, by split type.",
		}, []string{"split_type"}),
		splitRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_rejections_total",
			Help:      "Create requests rejected by split validation, by error code.",
		}, []string{"code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.expensesCreated,
		m.splitRejections,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ExpenseCreated and SplitRejected are safe on a nil *Metrics so the service
// can run without instrumentation in tests.
func (m *Metrics) ExpenseCreated(splitType string) {
	if m == nil {
		return
	}
	m.expensesCreated.WithLabelValues(splitType).Inc()
}

func (m *Metrics) SplitRejected(code string) {
	if m == nil {
		return
	}
	m.splitRejections.WithLabelValues(code).Inc()
}

// Middleware records request latency labelled by the matched route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
