package domain

import "time"

// RefreshToken is the persisted long-lived credential. Rows are never
// deleted on rotation, only marked revoked, so the table doubles as an
// audit trail.
type RefreshToken struct {
	ID         string
	UserID     string
	Token      string
	CreatedAt  time.Time
	ModifiedAt time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
}

// IsActive reports whether the token is neither revoked nor expired at
// the given instant. At most one token per user may be active; the
// rotator serializes per-user writes to hold that invariant.
func (t RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// AccessToken is a derived value, never persisted.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}
