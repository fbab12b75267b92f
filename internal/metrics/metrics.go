// Package metrics exposes the prometheus collectors of the API server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RoutinePublishes *prometheus.CounterVec // namespace, result
	Logins           *prometheus.CounterVec // method, result
	AuditWrites      *prometheus.CounterVec // result
	SubscriptionEval *prometheus.CounterVec // state
}

// New registers the collectors on reg under the given namespace.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		RoutinePublishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "routine_publishes_total",
				Help:      "Routine publish attempts by namespace and result",
			},
			[]string{"namespace", "result"},
		),
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Login attempts by method and result",
			},
			[]string{"method", "result"},
		),
		AuditWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_writes_total",
				Help:      "Audit log writes by result",
			},
			[]string{"result"},
		),
		SubscriptionEval: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscription_evaluations_total",
				Help:      "Subscription evaluations by resulting state",
			},
			[]string{"state"},
		),
	}
}

func (m *Metrics) RoutinePublished(namespace, result string) {
	if m == nil {
		return
	}
	m.RoutinePublishes.WithLabelValues(namespace, result).Inc()
}

func (m *Metrics) Login(method, result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(method, result).Inc()
}

func (m *Metrics) AuditWrite(result string) {
	if m == nil {
		return
	}
	m.AuditWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) SubscriptionEvaluated(state string) {
	if m == nil {
		return
	}
	m.SubscriptionEval.WithLabelValues(state).Inc()
}

// GinMiddleware records request counts and latency by route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
