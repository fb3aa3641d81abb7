package http

import (
	"net/http"

	"github.com/ecomcore/tokens/internal/common/constants"
	"github.com/ecomcore/tokens/internal/common/httpmetrics"
	"github.com/ecomcore/tokens/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return recovery(TraceIDMiddleware(maxRequestSize(metrics.Wrap(handler))))
}
