package domain

import "github.com/jonboulle/clockwork"

// clock is the package-level source of "today" for day-offset lookups.
// Tests freeze it with SetClock so forecast dates stay deterministic.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for date offsets. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
