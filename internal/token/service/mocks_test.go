package service

import (
	"context"
	"sync"
	"time"

	tokendomain "github.com/ecomcore/tokens/internal/token/domain"
	tokenrepo "github.com/ecomcore/tokens/internal/token/repository"
	userdomain "github.com/ecomcore/tokens/internal/user/domain"
	userrepo "github.com/ecomcore/tokens/internal/user/repository"
)

type mockUserRepo struct {
	findByIDFunc  func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	getClaimsFunc func(ctx context.Context, id userdomain.ID) ([]tokendomain.Claim, error)
	getRolesFunc  func(ctx context.Context, id userdomain.ID) ([]string, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) GetClaims(ctx context.Context, id userdomain.ID) ([]tokendomain.Claim, error) {
	if m.getClaimsFunc != nil {
		return m.getClaimsFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetRoles(ctx context.Context, id userdomain.ID) ([]string, error) {
	if m.getRolesFunc != nil {
		return m.getRolesFunc(ctx, id)
	}
	return nil, nil
}

type mockRefreshTokenRepo struct {
	createFunc             func(ctx context.Context, token tokendomain.RefreshToken) error
	findActiveByUserIDFunc func(ctx context.Context, userID string) (tokendomain.RefreshToken, error)
	revokeFunc             func(ctx context.Context, id string, at time.Time) error
	deleteExpiredFunc      func(ctx context.Context) (int64, error)
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token tokendomain.RefreshToken) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepo) FindActiveByUserID(ctx context.Context, userID string) (tokendomain.RefreshToken, error) {
	if m.findActiveByUserIDFunc != nil {
		return m.findActiveByUserIDFunc(ctx, userID)
	}
	return tokendomain.RefreshToken{}, tokenrepo.ErrRefreshTokenNotFound
}

func (m *mockRefreshTokenRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, id, at)
	}
	return nil
}

func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "test-id-123", nil
}

// memoryRefreshTokenRepo is a store with real read/write ordering for
// concurrency tests.
type memoryRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens []tokendomain.RefreshToken
	now    func() time.Time
}

func (m *memoryRefreshTokenRepo) Create(ctx context.Context, token tokendomain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *memoryRefreshTokenRepo) FindActiveByUserID(ctx context.Context, userID string) (tokendomain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.UserID == userID && t.IsActive(m.now()) {
			return t, nil
		}
	}
	return tokendomain.RefreshToken{}, tokenrepo.ErrRefreshTokenNotFound
}

func (m *memoryRefreshTokenRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tokens {
		if m.tokens[i].ID == id {
			revokedAt := at
			m.tokens[i].RevokedAt = &revokedAt
			m.tokens[i].ModifiedAt = at
		}
	}
	return nil
}

func (m *memoryRefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *memoryRefreshTokenRepo) activeCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.tokens {
		if t.UserID == userID && t.IsActive(m.now()) {
			count++
		}
	}
	return count
}
