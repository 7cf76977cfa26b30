package restro

import "time"

// Clock supplies the current time to every rule that depends on it:
// trial countdowns, restock stamps, entity timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// FixedClock always returns t. Useful in tests and demos.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
