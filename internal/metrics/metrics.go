// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Conflict check outcomes.
const (
	OutcomeSkipped  = "skipped"
	OutcomeClear    = "clear"
	OutcomeConflict = "conflict"
	OutcomeFailed   = "failed"
)

// Phone lookup outcomes.
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupInvalid  = "invalid"
	LookupFailed   = "failed"
)

var (
	// ConflictChecks counts FindConflicts calls by outcome.
	ConflictChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "physia",
		Subsystem: "schedule",
		Name:      "conflict_checks_total",
		Help:      "Appointment conflict checks by outcome.",
	}, []string{"outcome"})

	// EligibilityChecks counts schedule eligibility checks by reason ("ok" when eligible).
	EligibilityChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "physia",
		Subsystem: "schedule",
		Name:      "eligibility_checks_total",
		Help:      "Schedule eligibility checks by result.",
	}, []string{"result"})

	// PhoneLookups counts public client lookups by outcome.
	PhoneLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "physia",
		Subsystem: "clients",
		Name:      "phone_lookups_total",
		Help:      "Public client phone lookups by outcome.",
	}, []string{"outcome"})

	// RemindersSent counts WhatsApp reminders by result (sent, skipped, failed).
	RemindersSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "physia",
		Subsystem: "reminder",
		Name:      "messages_total",
		Help:      "Appointment reminders by result.",
	}, []string{"result"})
)

// Registry holds the service collectors plus the Go and process collectors.
var Registry = newRegistry()

func newRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ConflictChecks,
		EligibilityChecks,
		PhoneLookups,
		RemindersSent,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
