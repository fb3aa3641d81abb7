package crypto

import "github.com/google/uuid"

// IDGenerator hands out entity ids for persisted tokens. It is an
// interface so rotator tests can pin ids deterministically.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random v4 UUIDs. Refresh token rows use these as
// primary keys; the opaque token material itself comes from the CSPRNG,
// never from here.
type UUIDGenerator struct{}

var _ IDGenerator = (*UUIDGenerator)(nil)

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	return uuid.NewString(), nil
}
