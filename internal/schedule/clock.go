package schedule

import "time"

// Clock is the part of the time package the gate needs. Tests swap it
// for a clock they control.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

func RealClock() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
