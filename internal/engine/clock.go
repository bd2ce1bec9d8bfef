package engine

import "time"

// Timer is the handle for a single armed timeout.
type Timer interface {
	// Stop cancels the timer; it reports false when the callback already
	// fired or was stopped before.
	Stop() bool
}

// Clock abstracts timer arming so tests can fire deadlines deterministically.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemClock returns the wall-clock backed Clock used in production.
func SystemClock() Clock {
	return systemClock{}
}
