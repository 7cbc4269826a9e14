// Package clock provides a clock service as an alternative to using the
// standard time package directly. The intention is that production and
// test code be plug-compatible: in flight the clock yields the real
// system time; in a test it yields whatever sequence of values the test
// wants to see.
package clock

import "time"

// Clock is satisfied by anything that can report the current time.
//
// Known implementations:
//   - SystemClock, whose Now() returns the real system time.
//   - SteppingClock, which replays a fixed list of times.
//   - StoppedClock, which always returns the same time.
type Clock interface {
	Now() time.Time
}
