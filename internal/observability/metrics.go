// Package observability holds prometheus metric vectors shared across the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyhive_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// SessionInitTimeouts counts session restores that hit the timeout budget.
	SessionInitTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storyhive_session_init_timeouts_total",
		Help: "Total number of session initializations that timed out",
	})

	// ProfileLookupFailures counts profile lookups that failed or timed out
	// during session mapping and degraded to the non-admin role.
	ProfileLookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storyhive_profile_lookup_failures_total",
		Help: "Total number of degraded profile lookups during session mapping",
	})
)
