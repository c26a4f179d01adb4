package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classtime_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classtime_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Booking metrics
	BookingsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classtime_bookings_created_total",
			Help: "Bookings created by origin (single, recurring, propagated, auto)",
		},
		[]string{"origin"},
	)

	BookingsCancelledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classtime_bookings_cancelled_total",
			Help: "Bookings cancelled by kind (single, recurring)",
		},
		[]string{"kind"},
	)

	PropagationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "classtime_propagation_failures_total",
			Help: "Candidate timeslots skipped because booking them failed",
		},
	)

	// Chat metrics
	IntentPredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classtime_intent_predictions_total",
			Help: "Intent predictions by source (classifier, fallback) and intent",
		},
		[]string{"source", "intent"},
	)

	// Scheduler metrics
	SchedulerJobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classtime_scheduler_job_runs_total",
			Help: "Scheduled job runs by job and result",
		},
		[]string{"job", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		BookingsCreatedTotal,
		BookingsCancelledTotal,
		PropagationFailuresTotal,
		IntentPredictionsTotal,
		SchedulerJobRunsTotal,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
