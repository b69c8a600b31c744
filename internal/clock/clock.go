// Package clock abstracts wall-clock access so snapshot timestamps and
// staleness checks are deterministic in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
