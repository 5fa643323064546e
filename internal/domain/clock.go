package domain

import "time"

// Clock is the time source consumed by the fare ledger.
// Production code uses SystemClock; tests inject a fake that can be advanced.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts an ordinary function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock. time.Now carries a monotonic reading,
// so durations computed from it are immune to wall-clock adjustments.
var SystemClock Clock = ClockFunc(time.Now)
