package clock

import (
	"math"
	"sync"
	"time"
)

// Clock is a monotonic time source in seconds. Readings never decrease and
// keep advancing while the transport is stopped.
type Clock interface {
	Now() float64
}

// Monotonic reads Go's monotonic clock relative to its creation, so wall-clock
// adjustments never move it.
type Monotonic struct {
	epoch time.Time
}

// NewMonotonic creates a clock that reads 0 now
func NewMonotonic() *Monotonic {
	return &Monotonic{epoch: time.Now()}
}

func (m *Monotonic) Now() float64 {
	return time.Since(m.epoch).Seconds()
}

// Manual is a clock driven by hand, for tests and offline rendering.
type Manual struct {
	mu  sync.Mutex
	now float64
}

// NewManual creates a manual clock reading start
func NewManual(start float64) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t. Going backwards is ignored.
func (m *Manual) Set(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t > m.now {
		m.now = t
	}
}

// Advance moves the clock forward by d seconds
func (m *Manual) Advance(d float64) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Until converts a future clock reading into a wait duration (zero if past)
func Until(c Clock, at float64) time.Duration {
	d := at - c.Now()
	if d <= 0 || math.IsNaN(d) {
		return 0
	}
	return time.Duration(d * float64(time.Second))
}
