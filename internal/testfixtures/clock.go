package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source. Services take their notion of now
// as a func() time.Time, so a Clock can stand in wherever wall time would
// make booking windows or session expiry nondeterministic.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at the given instant, or at ReferenceTime when
// start is the zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now reports the instant the clock currently stands at.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc adapts the clock to the func() time.Time shape the services
// expect. A nil clock falls back to wall time.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set jumps the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and reports the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Current is an alias for Now, used where a test reads the clock without
// implying that time moved.
func (c *Clock) Current() time.Time {
	return c.Now()
}
