package http

import (
	"net/http"

	"github.com/ecomcore/tokens/internal/common/constants"
	commonerrors "github.com/ecomcore/tokens/internal/common/errors"
)

// HandleError writes err as a JSON error envelope. Domain errors surface
// at their declared status and code; anything else becomes a generic 500
// so internal detail never leaks to callers.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := TraceIDFromRequest(r)

	if de, ok := commonerrors.AsDomainError(err); ok {
		WriteErrorEnvelope(w, de.HTTPStatus(), de.Code(), de.Message(), traceID)
		return
	}

	WriteErrorEnvelope(w, http.StatusInternalServerError, CodeInternal, "internal error", traceID)
}

// TraceIDFromRequest extracts the trace id placed in context by
// TraceIDMiddleware. Empty when the request bypassed the middleware.
func TraceIDFromRequest(r *http.Request) string {
	traceID, _ := r.Context().Value(constants.TraceIDKey).(string)
	return traceID
}
