// Package metrics defines and registers all custom Prometheus metrics for the
// feed gateway. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation; the /metrics endpoint exposes them together with the HTTP
// metrics collected by echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "feed"

// ── Operation metrics ─────────────────────────────────────────────────────────

// OperationsTotal counts resolver calls.
// Labels:
//   - operation: registered operation name (e.g. "createPost")
//   - outcome: "ok" or the failure class (e.g. "forbidden", "invalid_input")
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of resolver operations, by name and outcome.",
	},
	[]string{"operation", "outcome"},
)

// OperationDuration measures resolver latency including validation,
// authorization and persistence.
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of resolver operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Post metrics ──────────────────────────────────────────────────────────────

// PostsCreatedTotal counts newly persisted posts.
var PostsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_created_total",
		Help:      "Total number of posts created.",
	},
)

// IdempotentReplaysTotal counts createPost calls answered from a previous
// result instead of inserting again.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of createPost calls replayed by idempotency key.",
	},
)

// AssetCleanupsTotal counts best-effort image removals.
// Label:
//   - result: "removed", "missing" or "failed"
var AssetCleanupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asset_cleanups_total",
		Help:      "Total number of stored image removals, by result.",
	},
	[]string{"result"},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// EventsPublishedTotal counts change events handed to the dispatcher.
// Label:
//   - kind: event kind (e.g. "post.created")
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of change events accepted for delivery.",
	},
	[]string{"kind"},
)

// JobsDroppedTotal counts background jobs discarded because the worker
// queue was full.
// Label:
//   - job: job name (e.g. "broadcast", "asset_cleanup")
var JobsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_dropped_total",
		Help:      "Total number of background jobs dropped on a full queue.",
	},
	[]string{"job"},
)

// JobQueueDepth tracks the current number of jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var JobQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "job_queue_depth",
		Help:      "Current number of jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// RealtimeClients tracks currently connected websocket observers.
var RealtimeClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_clients",
		Help:      "Number of connected realtime observers on this instance.",
	},
)

// RealtimeDeliveriesTotal counts per-client message deliveries.
// Label:
//   - result: "sent" or "dropped" (client buffer full)
var RealtimeDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_deliveries_total",
		Help:      "Total number of realtime messages queued to clients, by result.",
	},
	[]string{"result"},
)
