// Package clock abstracts wall-clock time so ledger arithmetic can be tested
// against controlled timestamps.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }
