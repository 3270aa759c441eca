package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "utxowatch",
		Subsystem: "webhook",
		Name:      "requests_total",
		Help:      "Count of webhook deliveries.",
	}, []string{"operation", "status"})
	webhookRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "utxowatch",
		Subsystem: "webhook",
		Name:      "request_duration_seconds",
		Help:      "Duration of webhook deliveries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
)

// Webhook tracks metrics for outgoing webhook calls.
type Webhook struct{}

// NewWebhook constructs a Webhook collector.
func NewWebhook() *Webhook {
	return &Webhook{}
}

// Observe records a single webhook call outcome and duration.
func (m Webhook) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	webhookRequestsTotal.WithLabelValues(operation, status).Inc()
	webhookRequestDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
