package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/ecomcore/tokens/internal/common/clock"
	"github.com/ecomcore/tokens/internal/common/constants"
	"github.com/ecomcore/tokens/internal/common/crypto"
	"github.com/ecomcore/tokens/internal/common/db"
	commonerrors "github.com/ecomcore/tokens/internal/common/errors"
	"github.com/ecomcore/tokens/internal/common/logger"
	tokendomain "github.com/ecomcore/tokens/internal/token/domain"
	tokenrepo "github.com/ecomcore/tokens/internal/token/repository"
	userdomain "github.com/ecomcore/tokens/internal/user/domain"
)

type RefreshTokenRotatorInterface interface {
	ObtainOrRotate(ctx context.Context, user userdomain.User, revokeOld bool) (tokendomain.RefreshToken, error)
}

// RefreshTokenRotator decides, per user, whether to reuse the active
// refresh token, revoke and replace it, or mint the first one. The whole
// read-decide-write sequence runs under a per-user lock so a user can
// never end up with two active tokens.
type RefreshTokenRotator struct {
	refreshTokenRepo tokenrepo.RefreshTokenRepository
	dbCircuitBreaker db.CircuitBreakerInterface
	idGenerator      crypto.IDGenerator
	clock            clock.Clock
	refreshTokenTTL  time.Duration
	users            userLocks
	log              *logger.Logger
}

func NewRefreshTokenRotator(
	refreshTokenRepo tokenrepo.RefreshTokenRepository,
	dbCircuitBreaker db.CircuitBreakerInterface,
	idGenerator crypto.IDGenerator,
	refreshTokenTTL time.Duration,
	clock clock.Clock,
	log *logger.Logger,
) *RefreshTokenRotator {
	return &RefreshTokenRotator{
		refreshTokenRepo: refreshTokenRepo,
		dbCircuitBreaker: dbCircuitBreaker,
		idGenerator:      idGenerator,
		clock:            clock,
		refreshTokenTTL:  refreshTokenTTL,
		log:              log,
	}
}

func (rtr *RefreshTokenRotator) ObtainOrRotate(ctx context.Context, user userdomain.User, revokeOld bool) (tokendomain.RefreshToken, error) {
	if user.ID == "" {
		return tokendomain.RefreshToken{}, ErrUserRequired
	}

	userID := string(user.ID)

	release := rtr.users.acquire(userID)
	defer release()

	existing, err := rtr.findActive(ctx, userID)
	if err != nil {
		if !errors.Is(err, tokenrepo.ErrRefreshTokenNotFound) {
			rtr.log.WithFields(ctx, logger.Fields{
				"user_id": userID,
				"action":  "find_active_refresh_token_failed",
			}).Errorf("failed to find active refresh token: %v", err)
			return tokendomain.RefreshToken{}, err
		}
		return rtr.mintAndStore(ctx, userID)
	}

	if !revokeOld {
		rtr.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "refresh_token_reused",
		}).Debug("active refresh token reused")
		incrementRefreshTokensReused()
		return existing, nil
	}

	now := rtr.clock.Now().UTC()
	err = rtr.dbCircuitBreaker.Call(ctx, func(ctx context.Context) error {
		return rtr.refreshTokenRepo.Revoke(ctx, existing.ID, now)
	})
	if err != nil {
		rtr.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "revoke_refresh_token_failed",
		}).Errorf("failed to revoke refresh token: %v", err)
		return tokendomain.RefreshToken{}, err
	}

	replacement, err := rtr.mintAndStore(ctx, userID)
	if err != nil {
		return tokendomain.RefreshToken{}, err
	}

	rtr.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "refresh_token_rotated",
	}).Info("refresh token revoked and replaced")
	incrementRefreshTokensRotated()

	return replacement, nil
}

func (rtr *RefreshTokenRotator) findActive(ctx context.Context, userID string) (tokendomain.RefreshToken, error) {
	var found tokendomain.RefreshToken
	err := rtr.dbCircuitBreaker.Call(ctx, func(ctx context.Context) error {
		token, err := rtr.refreshTokenRepo.FindActiveByUserID(ctx, userID)
		if err != nil {
			return err
		}
		found = token
		return nil
	})
	if err != nil {
		return tokendomain.RefreshToken{}, err
	}
	return found, nil
}

func (rtr *RefreshTokenRotator) mintAndStore(ctx context.Context, userID string) (tokendomain.RefreshToken, error) {
	token, err := rtr.mint(userID)
	if err != nil {
		return tokendomain.RefreshToken{}, err
	}

	err = rtr.dbCircuitBreaker.Call(ctx, func(ctx context.Context) error {
		return rtr.refreshTokenRepo.Create(ctx, token)
	})
	if err != nil {
		rtr.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "create_refresh_token_failed",
		}).Errorf("failed to persist refresh token: %v", err)
		return tokendomain.RefreshToken{}, err
	}

	rtr.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "refresh_token_minted",
	}).Info("refresh token minted")
	incrementRefreshTokensMinted()

	return token, nil
}

func (rtr *RefreshTokenRotator) mint(userID string) (tokendomain.RefreshToken, error) {
	raw, err := GenerateRefreshToken()
	if err != nil {
		return tokendomain.RefreshToken{}, err
	}

	id, err := rtr.idGenerator.NewID()
	if err != nil {
		return tokendomain.RefreshToken{}, err
	}

	now := rtr.clock.Now().UTC()

	return tokendomain.RefreshToken{
		ID:         id,
		UserID:     userID,
		Token:      raw,
		CreatedAt:  now,
		ModifiedAt: now,
		ExpiresAt:  now.Add(rtr.refreshTokenTTL),
	}, nil
}

// GenerateRefreshToken draws 32 bytes from the system CSPRNG and renders
// them as base64. Anything weaker than crypto/rand here is a correctness
// bug, not a style choice.
func GenerateRefreshToken() (string, error) {
	b := make([]byte, constants.RefreshTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", commonerrors.ErrRandomSourceFailure.WithCause(err)
	}

	return base64.StdEncoding.EncodeToString(b), nil
}
