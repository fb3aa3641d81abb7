package clock

import "time"

type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// UTCClock reports wall-clock time normalized to UTC. All token expiry
// arithmetic happens in UTC.
type UTCClock struct{}

func NewUTCClock() Clock {
	return &UTCClock{}
}

func (c *UTCClock) Now() time.Time {
	return time.Now().UTC()
}

func (c *UTCClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

type MockClock struct {
	time time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{time: t}
}

func (c *MockClock) Now() time.Time {
	return c.time
}

func (c *MockClock) Since(t time.Time) time.Duration {
	return c.time.Sub(t)
}

func (c *MockClock) SetTime(t time.Time) {
	c.time = t
}

func (c *MockClock) Advance(d time.Duration) {
	c.time = c.time.Add(d)
}
