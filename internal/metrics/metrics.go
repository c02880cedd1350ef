package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "studiofinder",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studiofinder",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studiofinder",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studiofinder",
			Subsystem: "payments",
			Name:      "webhook_events_total",
			Help:      "Payment webhook events by provider, event type and outcome.",
		},
		[]string{"provider", "type", "result"},
	)

	emailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studiofinder",
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Emails handed to the provider by kind and outcome.",
		},
		[]string{"kind", "result"},
	)

	enforcementRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studiofinder",
			Subsystem: "jobs",
			Name:      "enforcement_runs_total",
			Help:      "Subscription enforcement runs by outcome.",
		},
		[]string{"result"},
	)

	enforcementChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studiofinder",
			Subsystem: "jobs",
			Name:      "enforcement_changes_total",
			Help:      "Rows changed by subscription enforcement.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		webhookEvents,
		emailsSent,
		enforcementRuns,
		enforcementChanges,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency labelled by the matched
// route template, so path parameters do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordWebhook(provider, eventType, result string) {
	if eventType == "" {
		eventType = "unknown"
	}
	webhookEvents.WithLabelValues(provider, eventType, result).Inc()
}

func RecordEmail(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	emailsSent.WithLabelValues(kind, result).Inc()
}

// RecordEnforcement records one enforcement run and the rows it changed.
func RecordEnforcement(err error, expiredMemberships, expiredFeatured, reminders int) {
	result := "success"
	if err != nil {
		result = "error"
	}
	enforcementRuns.WithLabelValues(result).Inc()
	if err != nil {
		return
	}
	enforcementChanges.WithLabelValues("expired_membership").Add(float64(expiredMemberships))
	enforcementChanges.WithLabelValues("expired_featured").Add(float64(expiredFeatured))
	enforcementChanges.WithLabelValues("reminder_sent").Add(float64(reminders))
}
