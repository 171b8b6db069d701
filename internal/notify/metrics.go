package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricQueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketpoker_notify_queued_total",
		Help: "Notifications accepted into the dispatch queue.",
	})
	metricDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketpoker_notify_dropped_total",
		Help: "Notifications dropped: queue full, unknown platform or retries exhausted.",
	})
	metricRetryTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketpoker_notify_retried_total",
		Help: "Notification sends scheduled for retry.",
	})
	metricSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketpoker_notify_sent_total",
		Help: "Notifications delivered, by platform.",
	}, []string{"platform"})
	metricFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketpoker_notify_failed_total",
		Help: "Notification send failures, by platform.",
	}, []string{"platform"})
	metricCircuitOpenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketpoker_notify_circuit_open_total",
		Help: "Sends skipped because the target circuit was open.",
	})
	metricQueueLen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pocketpoker_notify_queue_len",
		Help: "Current dispatch queue length.",
	})
)
