package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	commonerrors "github.com/ecomcore/tokens/internal/common/errors"
	commonhttp "github.com/ecomcore/tokens/internal/common/http"
	"github.com/ecomcore/tokens/internal/common/jwtverify"
	"github.com/ecomcore/tokens/internal/common/logger"
	"github.com/ecomcore/tokens/internal/token/service"
	userdomain "github.com/ecomcore/tokens/internal/user/domain"
	userrepo "github.com/ecomcore/tokens/internal/user/repository"
)

type refreshRequest struct {
	RevokeOld bool `json:"revoke_old"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Handler struct {
	tokens         *service.TokenService
	users          userrepo.Repository
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewHandler(
	tokens *service.TokenService,
	users userrepo.Repository,
	signingKey string,
	requestTimeout time.Duration,
	log *logger.Logger,
) http.Handler {
	h := &Handler{
		tokens:         tokens,
		users:          users,
		requestTimeout: requestTimeout,
		log:            log,
	}

	authenticated := jwtverify.Middleware(signingKey, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/api/tokens/access", authenticated(http.HandlerFunc(h.accessToken)))
	mux.Handle("/api/tokens/refresh", authenticated(http.HandlerFunc(h.refreshToken)))
	return mux
}

func (h *Handler) accessToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", commonhttp.TraceIDFromRequest(r))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	user, ok := h.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	token, err := h.tokens.GetAccessToken(ctx, user)
	if err != nil {
		h.log.Errorf("access token issue failed: %v", err)
		commonhttp.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	})
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", commonhttp.TraceIDFromRequest(r))
		return
	}

	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := commonhttp.DecodeJSON(r, &req); err != nil {
			h.log.Warnf("refresh token request: invalid json: %v", err)
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", commonhttp.TraceIDFromRequest(r))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	user, ok := h.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	view, err := h.tokens.GetOrRotateRefreshToken(ctx, user, req.RevokeOld)
	if err != nil {
		h.log.Errorf("refresh token request failed: %v", err)
		commonhttp.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:     view.Token,
		ExpiresAt: view.ExpiresAt,
	})
}

func (h *Handler) resolveUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (userdomain.User, bool) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", commonhttp.TraceIDFromRequest(r))
		return userdomain.User{}, false
	}

	user, err := h.users.FindByID(ctx, userdomain.ID(claims.UserID))
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			commonhttp.HandleError(w, r, commonerrors.ErrUserNotFound)
			return userdomain.User{}, false
		}
		h.log.Errorf("user lookup failed: %v", err)
		commonhttp.HandleError(w, r, err)
		return userdomain.User{}, false
	}

	return user, true
}
