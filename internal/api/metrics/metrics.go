// Package metrics defines and registers all custom Prometheus metrics for
// the identity system. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry via
// promauto at package load; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - outcome: "created", "duplicate_email", "invalid", "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts by outcome.
// Label:
//   - outcome: "ok", "invalid_credentials", "inactive", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// TokenValidationsTotal counts token validations performed by the auth
// middleware.
// Label:
//   - outcome: "ok", "rejected"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of bearer-token validations, by outcome.",
	},
	[]string{"outcome"},
)

// AuditEventsTotal counts audit events processed by the dispatcher workers.
// Label:
//   - kind: the audit event kind (e.g. "login_failed", "role_changed")
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events processed, by kind.",
	},
	[]string{"kind"},
)

// AuditQueueDepth tracks the number of events waiting in each audit worker
// channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending per dispatcher worker.",
	},
	[]string{"worker_id"},
)
