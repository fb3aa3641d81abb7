package http

import (
	"net/http"
	"runtime/debug"

	"github.com/ecomcore/tokens/internal/common/logger"
)

// RecoveryMiddleware is the outermost layer of the handler chain; a
// panic anywhere below it becomes a 500 envelope instead of a dropped
// connection.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Criticalf("panic recovered serving %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
					WriteErrorEnvelope(w, http.StatusInternalServerError, CodeInternal, "internal server error", TraceIDFromRequest(r))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
