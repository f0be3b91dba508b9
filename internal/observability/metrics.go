// Package observability holds logging and the Prometheus metric definitions
// for the service. Metrics are registered with the default registry at init
// and exposed at /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "helpr"

// TransitionsTotal counts lifecycle transition attempts.
// Labels:
//   - operation: the transition (e.g. "claim_ticket")
//   - outcome: "success" or the rejection code (e.g. "INVALID_TRANSITION")
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of ticket lifecycle transition attempts, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// TicketsCreatedTotal counts successfully created tickets.
var TicketsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_created_total",
		Help:      "Total number of tickets created.",
	},
)

// NotificationsPublishedTotal counts change notifications relayed to Redis.
// Label:
//   - channel: the pub/sub channel published to
var NotificationsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_published_total",
		Help:      "Total number of change notifications published to Redis pub/sub.",
	},
	[]string{"channel"},
)

// HTTPRequestsTotal counts handled HTTP requests.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, path and status.",
	},
	[]string{"method", "path", "status"},
)

// HTTPRequestDuration measures request handling time.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP request handling.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "path"},
)
