package id

import (
	"sync"
	"time"
)

// NowMs returns current time in milliseconds since Unix epoch.
// Overridable in tests.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Clock produces strictly increasing millisecond timestamps per process.
type Clock struct {
	mu     sync.Mutex
	lastMs int64
}

// NewClock creates a new Clock.
func NewClock() *Clock { return &Clock{} }

// NextMs returns a millisecond timestamp strictly greater than any
// previously returned value. If the wall clock has not advanced past
// the last value (same-millisecond call or clock regression), the last
// value plus one is returned instead.
func (c *Clock) NextMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ms := NowMs()
	if ms <= c.lastMs {
		ms = c.lastMs + 1
	}
	c.lastMs = ms
	return ms
}
