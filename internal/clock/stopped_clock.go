package clock

import (
	"sync"
	"time"
)

// StoppedClock is a Clock that always reports the same instant, until
// explicitly moved forward with Advance or SetTime.
type StoppedClock struct {
	mutex sync.Mutex
	time  time.Time
}

var _ Clock = (*StoppedClock)(nil)

// NewStoppedClock creates a StoppedClock fixed at the given instant.
func NewStoppedClock(t time.Time) *StoppedClock {
	return &StoppedClock{time: t}
}

// SetTime moves the clock to a new fixed instant.
func (c *StoppedClock) SetTime(t time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.time = t
}

// Advance moves the clock forward by d.
func (c *StoppedClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.time = c.time.Add(d)
}

// Now always returns the currently configured time.
func (c *StoppedClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.time
}
