// Package testutil provides deterministic stand-ins for the harness's
// sources of nondeterminism (wall clock, run IDs), so orchestration
// tests and golden files are byte-stable across runs.
package testutil

import (
	"sync"
	"time"
)

// FixedClock is a thread-safe test clock that starts at a fixed
// instant and advances by a fixed step on every reading. The same
// test produces identical timestamps on every run.
type FixedClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewFixedClock creates a clock starting at start, advancing by step
// per Now() call.
func NewFixedClock(start time.Time, step time.Duration) *FixedClock {
	return &FixedClock{now: start, step: step}
}

// Now returns the current instant and advances the clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Current returns the current instant without advancing.
func (c *FixedClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
