package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TokenRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_requests_total",
			Help: "Total number of token requests",
		},
		[]string{"method", "path"},
	)

	TokenRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "token_requests_in_flight",
			Help: "Number of token requests currently being processed",
		},
	)

	TokenRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "token_request_duration_seconds",
			Help:    "Duration of token requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AccessTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	RefreshTokensMinted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_minted_total",
			Help: "Total number of refresh tokens minted",
		},
	)

	RefreshTokensReused = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_reused_total",
			Help: "Total number of active refresh tokens returned unchanged",
		},
	)

	RefreshTokensRotated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_rotated_total",
			Help: "Total number of refresh tokens revoked and replaced",
		},
	)

	RefreshTokensCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_cleanup_deleted_total",
			Help: "Total number of expired refresh tokens deleted during cleanup",
		},
	)

	JWTValidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jwt_validations_total",
			Help: "Total number of JWT validations",
		},
	)

	JWTValidationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jwt_validations_failed_total",
			Help: "Total number of failed JWT validations",
		},
	)
)
