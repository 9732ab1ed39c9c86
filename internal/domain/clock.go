package domain

import "github.com/jonboulle/clockwork"

// clock stamps feedback records and paces remote route lookups. Tests freeze
// or advance it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
