// Package metrics defines and registers the portal's custom Prometheus
// metrics. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - section: the guarded section name (e.g. "inquilino")
//   - state: resolving, unauthenticated, forbidden or authorized
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard evaluations, by section and resulting state.",
	},
	[]string{"section", "state"},
)

// UnknownRolesTotal counts identities carrying a role outside the canonical
// enumeration. Any increase means the backend and portal disagree on roles.
var UnknownRolesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unknown_roles_total",
		Help:      "Total number of guard evaluations that met an unrecognised role.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: ok, invalid_credentials, backend_unreachable, backend_failure, invalid_input, error
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionRestoreFailuresTotal counts requests whose session could not be
// restored because storage was unavailable.
var SessionRestoreFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_restore_failures_total",
		Help:      "Total number of session restores that failed on storage errors.",
	},
)

// ── Logout dispatcher metrics ─────────────────────────────────────────────────

// LogoutsTotal counts backend logout calls.
// Label:
//   - result: ok, failed, dropped
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_logouts_total",
		Help:      "Total number of best-effort backend logouts, by result.",
	},
	[]string{"result"},
)

// LogoutQueueDepth tracks jobs waiting in each dispatcher worker channel.
var LogoutQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "logout_queue_depth",
		Help:      "Current number of logouts pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
