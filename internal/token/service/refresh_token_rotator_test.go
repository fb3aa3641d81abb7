package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ecomcore/tokens/internal/common/clock"
	"github.com/ecomcore/tokens/internal/common/db"
	"github.com/ecomcore/tokens/internal/common/logger"
	tokendomain "github.com/ecomcore/tokens/internal/token/domain"
	userdomain "github.com/ecomcore/tokens/internal/user/domain"
)

func setupRotator(t *testing.T) (*RefreshTokenRotator, *mockRefreshTokenRepo, *mockIDGenerator, *clock.MockClock) {
	t.Helper()

	repo := &mockRefreshTokenRepo{}
	idGen := &mockIDGenerator{}
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	log, _ := logger.New("", "test", "info")

	dbCB := db.NewCircuitBreaker(5, 5*time.Second, 30*time.Second, log)

	rotator := NewRefreshTokenRotator(
		repo,
		dbCB,
		idGen,
		14*24*time.Hour,
		mockClock,
		log,
	)

	return rotator, repo, idGen, mockClock
}

func TestRefreshTokenRotator_ObtainOrRotate_MintsWhenNoneActive(t *testing.T) {
	rotator, repo, idGen, mockClock := setupRotator(t)

	userID := "user-123"
	tokenID := "token-id-123"

	idGen.newIDFunc = func() (string, error) {
		return tokenID, nil
	}

	var created tokendomain.RefreshToken
	repo.createFunc = func(ctx context.Context, token tokendomain.RefreshToken) error {
		created = token
		return nil
	}

	token, err := rotator.ObtainOrRotate(context.Background(), userdomain.User{ID: userdomain.ID(userID)}, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if token.ID != tokenID {
		t.Errorf("expected token id %s, got %s", tokenID, token.ID)
	}
	if token.UserID != userID {
		t.Errorf("expected user id %s, got %s", userID, token.UserID)
	}
	if token.Token == "" {
		t.Error("expected raw token to be set")
	}
	if token.RevokedAt != nil {
		t.Error("expected fresh token to be unrevoked")
	}

	now := mockClock.Now()
	if !token.CreatedAt.Equal(now) || !token.ModifiedAt.Equal(now) {
		t.Errorf("expected created/modified at %v, got %v / %v", now, token.CreatedAt, token.ModifiedAt)
	}
	wantExpiry := now.Add(14 * 24 * time.Hour)
	if !token.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expected expiry %v, got %v", wantExpiry, token.ExpiresAt)
	}

	if created.ID != tokenID {
		t.Error("expected minted token to be persisted")
	}
}

func TestRefreshTokenRotator_ObtainOrRotate_ReusesActiveToken(t *testing.T) {
	rotator, repo, _, mockClock := setupRotator(t)

	existing := tokendomain.RefreshToken{
		ID:        "token-id-old",
		UserID:    "user-123",
		Token:     "existing-raw-token",
		ExpiresAt: mockClock.Now().Add(24 * time.Hour),
	}

	repo.findActiveByUserIDFunc = func(ctx context.Context, userID string) (tokendomain.RefreshToken, error) {
		return existing, nil
	}
	repo.createFunc = func(ctx context.Context, token tokendomain.RefreshToken) error {
		t.Error("reuse must not persist anything")
		return nil
	}
	repo.revokeFunc = func(ctx context.Context, id string, at time.Time) error {
		t.Error("reuse must not revoke anything")
		return nil
	}

	token, err := rotator.ObtainOrRotate(context.Background(), userdomain.User{ID: "user-123"}, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if token.Token != existing.Token {
		t.Errorf("expected existing token %s returned unchanged, got %s", existing.Token, token.Token)
	}
}

func TestRefreshTokenRotator_ObtainOrRotate_RevokesAndReplaces(t *testing.T) {
	rotator, repo, idGen, mockClock := setupRotator(t)

	existing := tokendomain.RefreshToken{
		ID:        "token-id-old",
		UserID:    "user-123",
		Token:     "existing-raw-token",
		ExpiresAt: mockClock.Now().Add(24 * time.Hour),
	}

	idGen.newIDFunc = func() (string, error) {
		return "token-id-new", nil
	}

	repo.findActiveByUserIDFunc = func(ctx context.Context, userID string) (tokendomain.RefreshToken, error) {
		return existing, nil
	}

	var revokedID string
	var revokedAt time.Time
	repo.revokeFunc = func(ctx context.Context, id string, at time.Time) error {
		revokedID = id
		revokedAt = at
		return nil
	}

	var created tokendomain.RefreshToken
	repo.createFunc = func(ctx context.Context, token tokendomain.RefreshToken) error {
		created = token
		return nil
	}

	token, err := rotator.ObtainOrRotate(context.Background(), userdomain.User{ID: "user-123"}, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if revokedID != existing.ID {
		t.Errorf("expected old token %s revoked, got %s", existing.ID, revokedID)
	}
	if !revokedAt.Equal(mockClock.Now()) {
		t.Errorf("expected revocation stamped %v, got %v", mockClock.Now(), revokedAt)
	}
	if token.ID != "token-id-new" {
		t.Errorf("expected replacement token id token-id-new, got %s", token.ID)
	}
	if token.Token == existing.Token {
		t.Error("expected replacement raw token to differ from the revoked one")
	}
	if created.ID != "token-id-new" {
		t.Error("expected replacement token to be persisted")
	}
}

func TestRefreshTokenRotator_ObtainOrRotate_StoreReadErrorPropagates(t *testing.T) {
	rotator, repo, _, _ := setupRotator(t)

	storeErr := errors.New("store unavailable")
	repo.findActiveByUserIDFunc = func(ctx context.Context, userID string) (tokendomain.RefreshToken, error) {
		return tokendomain.RefreshToken{}, storeErr
	}

	_, err := rotator.ObtainOrRotate(context.Background(), userdomain.User{ID: "user-123"}, false)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestRefreshTokenRotator_ObtainOrRotate_CreateErrorPropagates(t *testing.T) {
	rotator, repo, _, _ := setupRotator(t)

	storeErr := errors.New("insert failed")
	repo.createFunc = func(ctx context.Context, token tokendomain.RefreshToken) error {
		return storeErr
	}

	_, err := rotator.ObtainOrRotate(context.Background(), userdomain.User{ID: "user-123"}, false)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected create error to propagate, got %v", err)
	}
}

func TestRefreshTokenRotator_ObtainOrRotate_IDGenerationErrorPropagates(t *testing.T) {
	rotator, _, idGen, _ := setupRotator(t)

	genErr := errors.New("id generation failed")
	idGen.newIDFunc = func() (string, error) {
		return "", genErr
	}

	_, err := rotator.ObtainOrRotate(context.Background(), userdomain.User{ID: "user-123"}, false)
	if !errors.Is(err, genErr) {
		t.Fatalf("expected id generation error to propagate, got %v", err)
	}
}

func TestRefreshTokenRotator_ObtainOrRotate_EmptyUser(t *testing.T) {
	rotator, _, _, _ := setupRotator(t)

	_, err := rotator.ObtainOrRotate(context.Background(), userdomain.User{}, false)
	if !errors.Is(err, ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
}

func TestRefreshTokenRotator_ConcurrentObtain_SingleActiveToken(t *testing.T) {
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	log, _ := logger.New("", "test", "info")
	repo := &memoryRefreshTokenRepo{now: mockClock.Now}

	seq := 0
	var seqMu sync.Mutex
	idGen := &mockIDGenerator{newIDFunc: func() (string, error) {
		seqMu.Lock()
		defer seqMu.Unlock()
		seq++
		return time.Now().Format("150405.000000000") + "-" + string(rune('a'+seq%26)), nil
	}}

	dbCB := db.NewCircuitBreaker(100, 5*time.Second, 30*time.Second, log)
	rotator := NewRefreshTokenRotator(repo, dbCB, idGen, 14*24*time.Hour, mockClock, log)

	user := userdomain.User{ID: "user-123"}

	const goroutines = 16
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if _, err := rotator.ObtainOrRotate(context.Background(), user, false); err != nil {
				t.Errorf("concurrent obtain failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := repo.activeCount("user-123"); got != 1 {
		t.Fatalf("expected exactly one active token after concurrent obtains, got %d", got)
	}
}

func TestRefreshTokenRotator_ConcurrentRotate_SingleActiveToken(t *testing.T) {
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	log, _ := logger.New("", "test", "info")
	repo := &memoryRefreshTokenRepo{now: mockClock.Now}

	seq := 0
	var seqMu sync.Mutex
	idGen := &mockIDGenerator{newIDFunc: func() (string, error) {
		seqMu.Lock()
		defer seqMu.Unlock()
		seq++
		return "token-id-" + string(rune('a'+seq%26)) + string(rune('a'+(seq/26)%26)), nil
	}}

	dbCB := db.NewCircuitBreaker(100, 5*time.Second, 30*time.Second, log)
	rotator := NewRefreshTokenRotator(repo, dbCB, idGen, 14*24*time.Hour, mockClock, log)

	user := userdomain.User{ID: "user-123"}

	if _, err := rotator.ObtainOrRotate(context.Background(), user, false); err != nil {
		t.Fatalf("seed mint failed: %v", err)
	}

	const goroutines = 8
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if _, err := rotator.ObtainOrRotate(context.Background(), user, true); err != nil {
				t.Errorf("concurrent rotate failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := repo.activeCount("user-123"); got != 1 {
		t.Fatalf("expected exactly one active token after concurrent rotations, got %d", got)
	}
}

func TestGenerateRefreshToken_NoCollisions(t *testing.T) {
	const samples = 10000

	seen := make(map[string]struct{}, samples)
	for i := 0; i < samples; i++ {
		token, err := GenerateRefreshToken()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(token) != 44 {
			t.Fatalf("expected 44-char base64 rendering of 32 bytes, got %d chars", len(token))
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("collision after %d generations", i)
		}
		seen[token] = struct{}{}
	}
}
