package service

import (
	"context"
	"time"

	"github.com/ecomcore/tokens/internal/common/logger"
	tokendomain "github.com/ecomcore/tokens/internal/token/domain"
	userdomain "github.com/ecomcore/tokens/internal/user/domain"
)

// RefreshTokenView is the only shape of a refresh token that leaves the
// service. Entity ids and revocation timestamps stay server-side.
type RefreshTokenView struct {
	Token     string
	ExpiresAt time.Time
}

// TokenService is the facade the rest of the application talks to. It is
// wired from narrow capabilities, not concrete types, so every
// collaborator can be swapped in tests.
type TokenService struct {
	claims  ClaimsBuilderInterface
	issuer  AccessTokenIssuerInterface
	rotator RefreshTokenRotatorInterface
	log     *logger.Logger
}

func NewTokenService(
	claims ClaimsBuilderInterface,
	issuer AccessTokenIssuerInterface,
	rotator RefreshTokenRotatorInterface,
	log *logger.Logger,
) *TokenService {
	return &TokenService{
		claims:  claims,
		issuer:  issuer,
		rotator: rotator,
		log:     log,
	}
}

func (s *TokenService) GetAccessToken(ctx context.Context, user userdomain.User) (tokendomain.AccessToken, error) {
	claims, err := s.claims.BuildClaims(ctx, user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "build_claims_failed",
		}).Errorf("failed to build claims: %v", err)
		return tokendomain.AccessToken{}, err
	}

	token, err := s.issuer.IssueAccessToken(user, claims)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "issue_access_token_failed",
		}).Errorf("failed to issue access token: %v", err)
		return tokendomain.AccessToken{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "access_token_issued",
	}).Info("access token issued")

	return token, nil
}

func (s *TokenService) GetOrRotateRefreshToken(ctx context.Context, user userdomain.User, revokeOld bool) (RefreshTokenView, error) {
	token, err := s.rotator.ObtainOrRotate(ctx, user, revokeOld)
	if err != nil {
		return RefreshTokenView{}, err
	}

	return RefreshTokenView{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	}, nil
}
