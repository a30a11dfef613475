// Package metrics defines the custom Prometheus metrics of the clientdesk
// API. It is the single source of truth for metric names, labels, and help
// strings.
//
// Build one Metrics per registry with New; the router exposes that registry
// on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clientdesk"

// Metrics groups the collectors registered with a single registry.
type Metrics struct {
	// LoginAttemptsTotal counts login attempts.
	// Label:
	//   - result: "success", "failure" or "error"
	LoginAttemptsTotal *prometheus.CounterVec

	// RegistrationsTotal counts account registrations.
	// Label:
	//   - result: "created", "username_exists", "password_mismatch", "invalid" or "error"
	RegistrationsTotal *prometheus.CounterVec

	// AuthorizationDecisionsTotal counts policy decisions.
	// Labels:
	//   - action: "read" or "write"
	//   - decision: "allow", "deny" or "unauthenticated"
	AuthorizationDecisionsTotal *prometheus.CounterVec

	// LogoutsTotal counts revoked sessions.
	LogoutsTotal prometheus.Counter

	// ClientMutationsTotal counts client record changes.
	// Label:
	//   - operation: "create", "update" or "delete"
	ClientMutationsTotal *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Total number of login attempts, by result.",
			},
			[]string{"result"},
		),
		RegistrationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total number of account registrations, by result.",
			},
			[]string{"result"},
		),
		AuthorizationDecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authorization_decisions_total",
				Help:      "Total number of authorization decisions, by action and decision.",
			},
			[]string{"action", "decision"},
		),
		LogoutsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logouts_total",
				Help:      "Total number of sessions revoked by logout.",
			},
		),
		ClientMutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_mutations_total",
				Help:      "Total number of client records created, updated or deleted.",
			},
			[]string{"operation"},
		),
	}
}
