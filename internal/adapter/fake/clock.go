package fake

import (
	"sync"
	"time"

	"slipway/internal/launch"
)

// Clock is a manually driven replacement for the wall clock. Time only
// moves when a test calls Advance or Set, which keeps session timestamps
// and duration math reproducible.
type Clock struct {
	mu     sync.Mutex
	base   time.Time
	offset time.Duration
}

var _ launch.Clock = (*Clock)(nil)

// NewClock returns a Clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{base: start}
}

// Now reports the frozen time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base.Add(c.offset)
}

// Advance shifts the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

// Set jumps the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base, c.offset = t, 0
}
