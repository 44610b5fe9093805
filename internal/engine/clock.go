package engine

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic logical clock. The engine stamps every change
// notification with Clock.Next so subscribers can order them.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// TimeSource supplies wall-clock time for order timestamps.
// Implemented by SystemTime (production) and testutil.SteppingTime (tests).
type TimeSource interface {
	Now() time.Time
}

// SystemTime reads the real clock.
type SystemTime struct{}

// Now returns time.Now.
func (SystemTime) Now() time.Time {
	return time.Now()
}
