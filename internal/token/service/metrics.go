package service

import (
	"github.com/ecomcore/tokens/internal/observability/metrics"
)

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}

func incrementRefreshTokensMinted() {
	metrics.RefreshTokensMinted.Inc()
}

func incrementRefreshTokensReused() {
	metrics.RefreshTokensReused.Inc()
}

func incrementRefreshTokensRotated() {
	metrics.RefreshTokensRotated.Inc()
}
