package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ecomcore/tokens/internal/common/clock"
	tokendomain "github.com/ecomcore/tokens/internal/token/domain"
	userdomain "github.com/ecomcore/tokens/internal/user/domain"
)

type AccessTokenIssuerInterface interface {
	IssueAccessToken(user userdomain.User, claims []tokendomain.Claim) (tokendomain.AccessToken, error)
}

// AccessTokenIssuer signs time-bounded HS256 tokens embedding a claim
// snapshot. The signing key comes from configuration only; startup fails
// before this type is ever constructed with an empty key.
type AccessTokenIssuer struct {
	signingKey     []byte
	issuer         string
	audience       string
	accessTokenTTL time.Duration
	clock          clock.Clock
}

func NewAccessTokenIssuer(
	signingKey string,
	issuer string,
	audience string,
	accessTokenTTL time.Duration,
	clock clock.Clock,
) *AccessTokenIssuer {
	return &AccessTokenIssuer{
		signingKey:     []byte(signingKey),
		issuer:         issuer,
		audience:       audience,
		accessTokenTTL: accessTokenTTL,
		clock:          clock,
	}
}

func (ti *AccessTokenIssuer) IssueAccessToken(user userdomain.User, claims []tokendomain.Claim) (tokendomain.AccessToken, error) {
	now := ti.clock.Now().UTC()
	expiresAt := now.Add(ti.accessTokenTTL)

	mapClaims := jwt.MapClaims{
		"iss": ti.issuer,
		"aud": ti.audience,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}
	mergeClaims(mapClaims, claims)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	tokenString, err := t.SignedString(ti.signingKey)
	if err != nil {
		return tokendomain.AccessToken{}, err
	}

	incrementAccessTokensIssued()

	return tokendomain.AccessToken{
		Token:     tokenString,
		ExpiresAt: expiresAt,
	}, nil
}

// registeredClaims are set by the issuer itself and must never be
// overridden by stored user claims, however the store is populated.
var registeredClaims = map[string]struct{}{
	"iss": {},
	"aud": {},
	"exp": {},
	"iat": {},
}

// mergeClaims folds the ordered claim list into JWT map claims. A claim
// type that occurs once becomes a string; repeated types (roles, duplicate
// custom claims) become a string array, preserving order. Registered
// claim types are dropped.
func mergeClaims(mapClaims jwt.MapClaims, claims []tokendomain.Claim) {
	for _, c := range claims {
		if _, reserved := registeredClaims[c.Type]; reserved {
			continue
		}

		existing, ok := mapClaims[c.Type]
		if !ok {
			mapClaims[c.Type] = c.Value
			continue
		}

		switch v := existing.(type) {
		case string:
			mapClaims[c.Type] = []string{v, c.Value}
		case []string:
			mapClaims[c.Type] = append(v, c.Value)
		}
	}
}
