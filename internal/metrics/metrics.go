// Package metrics provides Prometheus metrics for the DNS manager.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "dns_manager"

var (
	// ProviderChangesTotal counts submitted changes by action and returned status.
	ProviderChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "provider_changes_total",
		Help:      "Change requests submitted to the DNS provider.",
	}, []string{"action", "status"})

	ZonesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "zones_created_total",
		Help:      "Hosted zones created on demand.",
	})

	// DriftTotal counts provider changes that were accepted but not stored.
	DriftTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "drift_total",
		Help:      "Accepted provider changes whose store write failed.",
	}, []string{"operation"})

	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "import_rows_total",
		Help:      "Bulk import rows by outcome.",
	}, []string{"outcome"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
)

// Status label values for ProviderChangesTotal when the provider call failed.
const StatusError = "error"

// Outcome label values for ImportRowsTotal.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)
