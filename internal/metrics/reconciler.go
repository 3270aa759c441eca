package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcilerFilteredRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "utxowatch",
		Subsystem: "reconciler",
		Name:      "filtered_records_total",
		Help:      "Count of UTXO records seen by the address filter, split by verdict.",
	}, []string{"network", "verdict"})

	reconcilerCleanupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "utxowatch",
		Subsystem: "reconciler",
		Name:      "cleanup_total",
		Help:      "Count of orphan spend cleanups.",
	}, []string{"network", "status"})

	reconcilerCleanupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "utxowatch",
		Subsystem: "reconciler",
		Name:      "cleanup_duration_seconds",
		Help:      "Duration of orphan spend cleanups.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	reconcilerDeletedSpends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "utxowatch",
		Subsystem: "reconciler",
		Name:      "deleted_spends_total",
		Help:      "Count of orphan spend records deleted.",
	}, []string{"network"})

	reconcilerNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "utxowatch",
		Subsystem: "reconciler",
		Name:      "notifications_total",
		Help:      "Count of balance notifications by outcome.",
	}, []string{"network", "outcome"})
)

// Reconciler tracks metrics for the watched-address reconciler.
type Reconciler struct {
	network string
}

// NewReconciler constructs a Reconciler collector for a network.
func NewReconciler(network string) *Reconciler {
	if network == "" {
		network = "unknown"
	}
	return &Reconciler{network: network}
}

// ObserveFilter records how many records of a batch were kept and dropped.
func (m Reconciler) ObserveFilter(total, kept int) {
	reconcilerFilteredRecords.WithLabelValues(m.network, "kept").Add(float64(kept))
	reconcilerFilteredRecords.WithLabelValues(m.network, "dropped").Add(float64(total - kept))
}

// ObserveCleanup records a cleanup outcome, duration and deleted count.
func (m Reconciler) ObserveCleanup(err error, deleted int64, started time.Time) {
	status := statusOf(err)
	reconcilerCleanupTotal.WithLabelValues(m.network, status).Inc()
	reconcilerCleanupDuration.WithLabelValues(m.network, status).Observe(time.Since(started).Seconds())
	if deleted > 0 {
		reconcilerDeletedSpends.WithLabelValues(m.network).Add(float64(deleted))
	}
}

// ObserveNotification counts a notification outcome.
func (m Reconciler) ObserveNotification(outcome string) {
	reconcilerNotifications.WithLabelValues(m.network, outcome).Inc()
}
