package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitkuhar_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kitkuhar_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kitkuhar_api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitkuhar_api_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"limiter"},
	)

	// Community metrics, labelled by caller kind (user | anonymous)
	RatingsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitkuhar_ratings_submitted_total",
			Help: "Ratings created or updated",
		},
		[]string{"caller", "result"}, // result: created | updated
	)

	CommentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitkuhar_comments_created_total",
			Help: "Comments created",
		},
		[]string{"caller"},
	)

	// Media metrics
	MediaFilesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitkuhar_media_files_stored_total",
			Help: "Media files written to storage",
		},
		[]string{"type"},
	)

	MediaBytesStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kitkuhar_media_bytes_stored_total",
			Help: "Bytes written to media storage after processing",
		},
	)

	MediaRollbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kitkuhar_media_batch_rollbacks_total",
			Help: "Multi-file uploads rolled back after a failure",
		},
	)
)

// RecordAPIRequest records one served request
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
