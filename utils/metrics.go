package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "collection"},
	)

	// Authentication Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status", "type"}, // success/failure, session/2fa/backup_code
	)

	// Session Metrics
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Total number of sessions created",
		},
	)

	SessionsInvalidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_invalidated_total",
			Help: "Total number of sessions invalidated by reason",
		},
		[]string{"reason"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions_total",
			Help: "Total number of active sessions",
		},
	)

	// Cache Metrics
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations by outcome",
		},
		[]string{"cache", "outcome"}, // hit/miss
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by component and kind",
		},
		[]string{"component", "kind"},
	)
)

// TrackDBOperation tracks database operation duration
func TrackDBOperation(operation, collection string) *prometheus.Timer {
	return prometheus.NewTimer(DBOperationDuration.WithLabelValues(operation, collection))
}

// TrackAuthAttempt records authentication attempts
func TrackAuthAttempt(status, authType string) {
	AuthAttempts.WithLabelValues(status, authType).Inc()
}

// TrackSessionCreated increments the session creation counter
func TrackSessionCreated() {
	SessionsCreated.Inc()
}

// TrackSessionInvalidated records an invalidation with its reason
func TrackSessionInvalidated(reason string) {
	SessionsInvalidated.WithLabelValues(reason).Inc()
}

// TrackCacheOperation records a cache hit or miss
func TrackCacheOperation(cache string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheOperations.WithLabelValues(cache, outcome).Inc()
}

// TrackError increments the error counter by component and kind
func TrackError(component, kind string) {
	ErrorsTotal.WithLabelValues(component, kind).Inc()
}
