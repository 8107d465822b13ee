// Package metrics defines and registers all custom Prometheus metrics for the
// bookstore API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init via promauto and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookstore"

// ── Identity metrics ──────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - operation: "login" or "register"
//   - result: "success" or the error code (e.g. "INVALID_CREDENTIALS", "USERNAME_TAKEN")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login and registration attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// AuthzDenialsTotal counts requests rejected by the authorization gate.
// Labels:
//   - operation: gated operation name (e.g. "catalog:create")
//   - reason: "unauthenticated" or "forbidden"
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of requests denied by the authorization gate.",
	},
	[]string{"operation", "reason"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CatalogMutationsTotal counts successful catalog writes.
// Label:
//   - operation: "create", "update" or "delete"
var CatalogMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_mutations_total",
		Help:      "Total number of successful catalog mutations.",
	},
	[]string{"operation"},
)

// CacheLookupsTotal counts book cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of book cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by outcome.
// Label:
//   - result: "stored", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, by outcome.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteDuration measures how long persisting one audit event takes.
var AuditWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of audit event persistence from dequeue to store.",
		Buckets:   prometheus.DefBuckets,
	},
)
