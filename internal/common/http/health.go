package http

import (
	"net/http"

	"github.com/ecomcore/tokens/internal/common/logger"
)

// HealthHandler answers liveness probes. It reports process health only;
// database reachability is visible through the pool metrics instead.
func HealthHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteErrorEnvelope(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", TraceIDFromRequest(r))
			return
		}
		log.Debugf("health check request")
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "tokens"})
	}
}
