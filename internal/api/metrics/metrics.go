// Package metrics defines and registers all custom Prometheus metrics for the
// licensing service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time; the
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "licensing"

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthorizeAttemptsTotal counts authorize calls by outcome.
// Label:
//   - result: "ok" (idempotent re-authorize), "registered" (fresh account),
//     "hwid_mismatch", or "hwid_taken"
var AuthorizeAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorize_attempts_total",
		Help:      "Total number of authorize calls, labelled by outcome.",
	},
	[]string{"result"},
)

// LogoutsTotal counts successful account releases.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of successful logouts.",
	},
)

// ── Balance metrics ───────────────────────────────────────────────────────────

// MinutesConsumedTotal accumulates minutes deducted by successful consume calls.
var MinutesConsumedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "minutes_consumed_total",
		Help:      "Total minutes deducted from account balances.",
	},
)

// ConsumeRejectionsTotal counts consume calls rejected before any mutation.
// Label:
//   - reason: "not_found", "hwid_mismatch", or "insufficient_balance"
var ConsumeRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consume_rejections_total",
		Help:      "Total number of rejected consume calls, labelled by reason.",
	},
	[]string{"reason"},
)

// BalanceSetTotal counts administrative balance overwrites.
var BalanceSetTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_set_total",
		Help:      "Total number of administrative set-time overrides.",
	},
)

// ── Audit journal metrics ─────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of audit events waiting in each
// dispatcher worker channel.
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

// AuditWriteErrorsTotal counts audit journal entries that failed to persist.
var AuditWriteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_errors_total",
		Help:      "Total number of audit events that could not be written to the journal.",
	},
)
