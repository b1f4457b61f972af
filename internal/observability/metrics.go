package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// GeoLookups counts IP geolocation lookups by outcome.
	GeoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_geo_lookups_total",
		Help: "Total number of IP geolocation lookups by result",
	}, []string{"result"})

	// ProfileViewsRecorded counts stored profile views.
	ProfileViewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analytics_profile_views_recorded_total",
		Help: "Total number of profile views recorded",
	})

	// ActivityFeedSize records how many entries each rendered activity feed holds.
	ActivityFeedSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "analytics_activity_feed_size",
		Help:    "Number of entries returned per activity feed request",
		Buckets: []float64{0, 1, 2, 5, 8, 10, 20, 50},
	})
)

// Geo lookup results.
const (
	GeoResultSkipped = "skipped"
	GeoResultHit     = "hit"
	GeoResultMiss    = "miss"
	GeoResultError   = "error"
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
