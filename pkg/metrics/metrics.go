package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records admin login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_auth_attempts_total",
			Help: "Total number of admin login attempts",
		},
		[]string{"result"},
	)

	// RSVPSubmissions counts accepted RSVPs by attendance answer (yes|no).
	RSVPSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_rsvp_submissions_total",
			Help: "Total number of stored RSVP submissions",
		},
		[]string{"attending"},
	)

	// RSVPDeletions counts admin delete requests that reached the store successfully.
	RSVPDeletions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_rsvp_deletions_total",
			Help: "Total number of RSVP deletions",
		},
	)

	// StoreErrors counts failed persistence calls by operation and error kind.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_store_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"op", "kind"},
	)

	// RSVPParties tracks the number of stored parties per attendance answer.
	RSVPParties = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wedding_rsvp_parties",
			Help: "Number of stored RSVP parties",
		},
		[]string{"attending"},
	)

	// RSVPGuests tracks the headcount of attending parties.
	RSVPGuests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wedding_rsvp_attending_guests",
			Help: "Total guests across attending parties",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wedding_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
