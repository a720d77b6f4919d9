package clock

import "time"

// Clock provides time operations that can be mocked for testing.
// Times are always in UTC so that every storage backend round-trips them
// unchanged.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time truncated to microseconds, the
// precision PostgreSQL stores
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
