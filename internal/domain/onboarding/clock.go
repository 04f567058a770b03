package onboarding

import "time"

// Clock schedules the engine's auto-advance timers
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback that can be cancelled
type Timer interface {
	Stop() bool
}

// RealClock uses the runtime timers
type RealClock struct{}

// AfterFunc runs f on its own goroutine once d has elapsed
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
