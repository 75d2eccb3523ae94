// Package clock provides the time sources behind every delayed or periodic
// behavior in treelights.
//
// A Scheduler runs all of its callbacks on a single logical thread. Loop is
// the wall-clock implementation used by the running program; Virtual is a
// manually advanced implementation used by tests and the simulate command.
package clock

import "time"

// Clock provides the current time. Use Real for production and a Virtual
// scheduler for testing.
type Clock interface {
	Now() time.Time
}

// Real returns the actual current time.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time { return time.Now() }

// Timer is a handle to scheduled work.
type Timer interface {
	// Stop cancels the timer. It reports whether the timer was still pending.
	// A stopped timer never runs its callback again.
	Stop() bool
}

// Scheduler schedules callbacks against a clock. Callbacks never run
// synchronously inside the scheduling call.
type Scheduler interface {
	Clock

	// AfterFunc runs fn once, d after now.
	AfterFunc(d time.Duration, fn func()) Timer

	// EveryFunc runs fn every d, starting d after now, until stopped.
	EveryFunc(d time.Duration, fn func()) Timer

	// Defer runs fn after the current task completes and before any
	// timer fires.
	Defer(fn func())
}

// stopFlag is the shared cancellation state for timers.
type stopFlag struct {
	stopped bool
	fired   bool
}

func (f *stopFlag) stop() bool {
	if f.stopped || f.fired {
		return false
	}
	f.stopped = true
	return true
}
