package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "utxowatch",
		Subsystem: "hook",
		Name:      "requests_total",
		Help:      "Count of host event requests.",
	}, []string{"event", "code"})
	hookRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "utxowatch",
		Subsystem: "hook",
		Name:      "request_duration_seconds",
		Help:      "Duration of host event requests including queueing.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event"})
)

// Hook tracks metrics for the host event API.
type Hook struct{}

func NewHook() *Hook {
	return &Hook{}
}

// ObserveRequest records one handled event request.
func (m Hook) ObserveRequest(event string, code int, started time.Time) {
	hookRequestsTotal.WithLabelValues(event, strconv.Itoa(code)).Inc()
	hookRequestDuration.WithLabelValues(event).Observe(time.Since(started).Seconds())
}
