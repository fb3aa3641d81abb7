package domain

// Claim is a single named assertion about a user. Claims are ordered:
// subject and email first, then the user's stored custom claims, then one
// role claim per role. Duplicates are allowed; deduplication is the user
// store's concern, not ours.
type Claim struct {
	Type  string
	Value string
}

const (
	ClaimTypeSubject = "sub"
	ClaimTypeEmail   = "email"
	ClaimTypeRole    = "role"
)
