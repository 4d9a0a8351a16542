// Package metrics defines and registers all custom Prometheus metrics for the
// delivery API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chaeso"

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts newly created orders.
// Label:
//   - assignment: "explicit" (transporter named by the client) or "random"
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created, by transporter assignment mode.",
	},
	[]string{"assignment"},
)

// OrderAssignmentFailuresTotal counts orders that could not be assigned.
// Label:
//   - reason: "no_transporter" or "transporter_not_found"
var OrderAssignmentFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_assignment_failures_total",
		Help:      "Total number of order creations rejected during transporter assignment.",
	},
	[]string{"reason"},
)

// OrdersDeliveredTotal counts orders marked as delivered.
var OrdersDeliveredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_delivered_total",
		Help:      "Total number of orders marked as delivered.",
	},
)

// ── Audit event metrics ───────────────────────────────────────────────────────

// OrderEventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var OrderEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "order_events_queue_depth",
		Help:      "Current number of order events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// OrderEventsProcessedTotal counts audit events by outcome.
// Labels:
//   - type: created, delivered, reassigned, unassigned
//   - result: "ok" or "error"
var OrderEventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_events_processed_total",
		Help:      "Total number of order audit events handled by the dispatcher.",
	},
	[]string{"type", "result"},
)

// OrderEventProcessingDuration measures how long recording a single event takes.
var OrderEventProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_event_processing_duration_seconds",
		Help:      "Duration of order event recording from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Catalog & identity metrics ────────────────────────────────────────────────

// ProductsCreatedTotal counts catalog items created.
var ProductsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_created_total",
		Help:      "Total number of products added to the catalog.",
	},
)

// SessionsRevokedTotal counts session revocations.
// Label:
//   - reason: "logout" or "password_change"
var SessionsRevokedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of bearer sessions revoked, by reason.",
	},
	[]string{"reason"},
)
