package service

import "sync"

// userLocks serializes refresh-token rotation per user id. The store is
// read-decide-write across several statements, so without this two
// concurrent rotations for the same user could both see "no active token"
// and double-mint. Different users never contend.
type userLocks struct {
	locks sync.Map
}

func (l *userLocks) acquire(userID string) func() {
	actual, _ := l.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
