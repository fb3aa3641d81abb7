package service

import (
	"context"

	tokendomain "github.com/ecomcore/tokens/internal/token/domain"
	userdomain "github.com/ecomcore/tokens/internal/user/domain"
	userrepo "github.com/ecomcore/tokens/internal/user/repository"
)

type ClaimsBuilderInterface interface {
	BuildClaims(ctx context.Context, user userdomain.User) ([]tokendomain.Claim, error)
}

// ClaimsBuilder assembles the identity assertions embedded into access
// tokens: subject and email always, then the user's stored custom claims
// in store order, then one role claim per role. No deduplication.
type ClaimsBuilder struct {
	users userrepo.Repository
}

func NewClaimsBuilder(users userrepo.Repository) *ClaimsBuilder {
	return &ClaimsBuilder{users: users}
}

func (b *ClaimsBuilder) BuildClaims(ctx context.Context, user userdomain.User) ([]tokendomain.Claim, error) {
	claims := []tokendomain.Claim{
		{Type: tokendomain.ClaimTypeSubject, Value: string(user.ID)},
		{Type: tokendomain.ClaimTypeEmail, Value: user.Email},
	}

	custom, err := b.users.GetClaims(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	claims = append(claims, custom...)

	roles, err := b.users.GetRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		claims = append(claims, tokendomain.Claim{
			Type:  tokendomain.ClaimTypeRole,
			Value: role,
		})
	}

	return claims, nil
}
