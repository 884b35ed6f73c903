package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics instruments inbound requests.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// GatewayMetrics exposes billing-specific instruments.
type GatewayMetrics struct {
	consumeResults *prometheus.CounterVec
	creditsCharged prometheus.Counter
	webhookEvents  *prometheus.CounterVec
}

func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creditgate_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creditgate_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func NewGatewayMetrics(reg prometheus.Registerer) (*GatewayMetrics, error) {
	m := &GatewayMetrics{
		consumeResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creditgate_consume_total",
			Help: "Consume calls by feature and outcome.",
		}, []string{"feature", "outcome"}),
		creditsCharged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "creditgate_credits_charged_total",
			Help: "Total credits debited across all accounts.",
		}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creditgate_webhook_events_total",
			Help: "Subscription webhook deliveries by outcome.",
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{m.consumeResults, m.creditsCharged, m.webhookEvents} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordConsume counts one consume attempt. Outcome is the stable error
// token, or "ok" for a successful debit.
func (m *GatewayMetrics) RecordConsume(feature, outcome string, charged int64) {
	if m == nil {
		return
	}
	m.consumeResults.WithLabelValues(strings.TrimSpace(feature), outcome).Inc()
	if charged > 0 {
		m.creditsCharged.Add(float64(charged))
	}
}

// RecordWebhook counts one subscription-update delivery.
func (m *GatewayMetrics) RecordWebhook(outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(outcome).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
