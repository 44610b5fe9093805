package testutil

import (
	"sync"
	"time"
)

// SteppingTime is a deterministic wall clock for tests.
//
// Each call to Now returns the start time advanced by step times the number
// of earlier calls, so consecutive orders get distinct, predictable
// timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingTime struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	calls int64
}

// NewSteppingTime creates a clock starting at start.
//
// The first call to Now() returns start.
func NewSteppingTime(start time.Time, step time.Duration) *SteppingTime {
	return &SteppingTime{start: start, step: step}
}

// Now returns the next instant.
func (c *SteppingTime) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Reset rewinds the clock to its start time.
func (c *SteppingTime) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
