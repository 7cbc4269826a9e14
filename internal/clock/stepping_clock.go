package clock

import (
	"sync"
	"time"
)

// SteppingClock is a Clock that returns a given series of time values, one
// at a time. It's useful in a test case that makes a series of calls to
// get the current time and needs each call to observe time advancing.
type SteppingClock struct {
	mutex    sync.Mutex
	nextTime int
	times    []time.Time
}

var _ Clock = (*SteppingClock)(nil)

// NewSteppingClock creates a SteppingClock. Each call to Now returns the
// next time in times; once exhausted, Now keeps returning the last value.
func NewSteppingClock(times []time.Time) *SteppingClock {
	return &SteppingClock{times: times}
}

// SetTimes replaces the array of times to return.
func (c *SteppingClock) SetTimes(times []time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.times = times
	c.nextTime = 0
}

// Now returns the next time value from the configured list. If the list
// is empty, it returns the UNIX epoch.
func (c *SteppingClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.times) == 0 {
		return time.Unix(0, 0).UTC()
	}
	if c.nextTime >= len(c.times) {
		return c.times[len(c.times)-1]
	}
	result := c.times[c.nextTime]
	c.nextTime++
	return result
}
