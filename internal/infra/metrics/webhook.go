package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		webhookRequests,
		webhookDuration,
	)
}

var (
	// Count of webhook and test-payment calls grouped by route, result and bounded reason.
	// result: sent|ignored|rejected|error
	// reason: ok|missing_signature|invalid_signature|bad_json|delivery_failed|not_trigger|internal
	webhookRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Count of inbound webhook calls by route, result and reason.",
		},
		[]string{"route", "result", "reason"},
	)

	webhookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_duration_seconds",
			Help:    "Duration of inbound webhook handlers in seconds.",
			Buckets: []float64{0.005, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "result"},
	)
)

func ObserveWebhook(route, result, reason string, d time.Duration) {
	webhookRequests.WithLabelValues(norm(route), norm(result), norm(reason)).Inc()
	webhookDuration.WithLabelValues(norm(route), norm(result)).Observe(d.Seconds())
}
