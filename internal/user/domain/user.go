package domain

import "time"

type ID string

// User is owned by the identity subsystem; the token service only reads
// it.
type User struct {
	ID        ID
	Email     string
	CreatedAt time.Time
}
