package item

import (
	"sync"
	"time"
)

// IDGenerator hands out unique item ids derived from the wall clock in milliseconds.
// Successive calls within the same millisecond, or a clock that moves backwards,
// are bumped past the last issued id so ids never repeat.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator reading time from now. A nil now uses time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns a fresh id strictly greater than both floor and any id this generator
// has already issued. Pass the largest id known to exist in the store as floor.
func (g *IDGenerator) Next(floor int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	if id <= floor {
		id = floor + 1
	}
	g.last = id
	return id
}
