package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ecomcore/tokens/internal/common/clock"
	tokendomain "github.com/ecomcore/tokens/internal/token/domain"
	userdomain "github.com/ecomcore/tokens/internal/user/domain"
)

const testSigningKey = "test-secret-key-must-be-at-least-32-bytes-long"

func newTestIssuer(c clock.Clock, ttl time.Duration) *AccessTokenIssuer {
	return NewAccessTokenIssuer(testSigningKey, "ecomcore", "ecomcore-api", ttl, c)
}

func parseTestToken(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(testSigningKey), nil
	}, jwt.WithTimeFunc(func() time.Time {
		// Tokens in these tests are minted with a mock clock pinned at
		// this instant; validate against the same instant.
		return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	}))
	if err != nil || !parsed.Valid {
		t.Fatalf("failed to parse issued token: %v", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	return mapClaims
}

func TestAccessTokenIssuer_IssueAccessToken_EmbedsClaimsSnapshot(t *testing.T) {
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := newTestIssuer(mockClock, 24*time.Hour)

	user := userdomain.User{ID: "user-123", Email: "u1@example.com"}
	claims := []tokendomain.Claim{
		{Type: tokendomain.ClaimTypeSubject, Value: "user-123"},
		{Type: tokendomain.ClaimTypeEmail, Value: "u1@example.com"},
		{Type: "tier", Value: "gold"},
		{Type: tokendomain.ClaimTypeRole, Value: "customer"},
		{Type: tokendomain.ClaimTypeRole, Value: "admin"},
	}

	token, err := issuer.IssueAccessToken(user, claims)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	mapClaims := parseTestToken(t, token.Token)

	if got := mapClaims["sub"]; got != "user-123" {
		t.Errorf("expected sub user-123, got %v", got)
	}
	if got := mapClaims["email"]; got != "u1@example.com" {
		t.Errorf("expected email u1@example.com, got %v", got)
	}
	if got := mapClaims["tier"]; got != "gold" {
		t.Errorf("expected tier gold, got %v", got)
	}
	if got := mapClaims["iss"]; got != "ecomcore" {
		t.Errorf("expected iss ecomcore, got %v", got)
	}
	if got := mapClaims["aud"]; got != "ecomcore-api" {
		t.Errorf("expected aud ecomcore-api, got %v", got)
	}

	roles, ok := mapClaims["role"].([]any)
	if !ok {
		t.Fatalf("expected role claim to be an array, got %T", mapClaims["role"])
	}
	if len(roles) != 2 || roles[0] != "customer" || roles[1] != "admin" {
		t.Errorf("expected roles [customer admin] in order, got %v", roles)
	}
}

func TestAccessTokenIssuer_IssueAccessToken_ExpiryArithmetic(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	mockClock := clock.NewMockClock(issuedAt)

	lifetime := 2 * 24 * time.Hour
	issuer := newTestIssuer(mockClock, lifetime)

	token, err := issuer.IssueAccessToken(userdomain.User{ID: "user-123"}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	wantExpiry := issuedAt.Add(lifetime)
	if !token.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expected expiry %v, got %v", wantExpiry, token.ExpiresAt)
	}

	mapClaims := parseTestToken(t, token.Token)
	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		t.Fatalf("expected numeric exp claim, got %T", mapClaims["exp"])
	}
	if int64(exp) != wantExpiry.Unix() {
		t.Errorf("expected exp %d, got %d", wantExpiry.Unix(), int64(exp))
	}
	iat, ok := mapClaims["iat"].(float64)
	if !ok {
		t.Fatalf("expected numeric iat claim, got %T", mapClaims["iat"])
	}
	if int64(iat) != issuedAt.Unix() {
		t.Errorf("expected iat %d, got %d", issuedAt.Unix(), int64(iat))
	}
}

func TestAccessTokenIssuer_IssueAccessToken_RegisteredClaimsNotOverridden(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	mockClock := clock.NewMockClock(issuedAt)

	lifetime := 24 * time.Hour
	issuer := newTestIssuer(mockClock, lifetime)

	claims := []tokendomain.Claim{
		{Type: "exp", Value: "9999999999"},
		{Type: "iss", Value: "attacker"},
		{Type: "aud", Value: "attacker-api"},
		{Type: "iat", Value: "0"},
		{Type: "tier", Value: "gold"},
	}

	token, err := issuer.IssueAccessToken(userdomain.User{ID: "user-123"}, claims)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	mapClaims := parseTestToken(t, token.Token)

	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		t.Fatalf("expected numeric exp claim, got %T", mapClaims["exp"])
	}
	if int64(exp) != issuedAt.Add(lifetime).Unix() {
		t.Errorf("expected issuer-set exp %d, got %d", issuedAt.Add(lifetime).Unix(), int64(exp))
	}
	if got := mapClaims["iss"]; got != "ecomcore" {
		t.Errorf("expected issuer-set iss, got %v", got)
	}
	if got := mapClaims["aud"]; got != "ecomcore-api" {
		t.Errorf("expected issuer-set aud, got %v", got)
	}
	iat, ok := mapClaims["iat"].(float64)
	if !ok {
		t.Fatalf("expected numeric iat claim, got %T", mapClaims["iat"])
	}
	if int64(iat) != issuedAt.Unix() {
		t.Errorf("expected issuer-set iat %d, got %d", issuedAt.Unix(), int64(iat))
	}
	if got := mapClaims["tier"]; got != "gold" {
		t.Errorf("expected non-registered claims kept, got %v", got)
	}
}

func TestAccessTokenIssuer_IssueAccessToken_WrongSecretFailsVerification(t *testing.T) {
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := newTestIssuer(mockClock, time.Hour)

	token, err := issuer.IssueAccessToken(userdomain.User{ID: "user-123"}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err = jwt.Parse(token.Token, func(t *jwt.Token) (any, error) {
		return []byte("different-secret-key-must-be-at-least-32b"), nil
	})
	if err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}
