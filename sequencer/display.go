package sequencer

import (
	"time"

	"go-stepseq/clock"
)

// TimedDisplay delays each highlight until its clock time, then calls
// Deliver. Best effort: it rides the Go timer, not the audio clock.
type TimedDisplay struct {
	Clock   clock.Clock
	Deliver func(step int)

	// AfterFunc is time.AfterFunc unless replaced
	AfterFunc func(d time.Duration, f func()) *time.Timer
}

// NewTimedDisplay wraps deliver so it runs when the step sounds
func NewTimedDisplay(c clock.Clock, deliver func(step int)) *TimedDisplay {
	return &TimedDisplay{
		Clock:     c,
		Deliver:   deliver,
		AfterFunc: time.AfterFunc,
	}
}

func (td *TimedDisplay) Highlight(step int, at float64) {
	if td.Deliver == nil {
		return
	}
	wait := clock.Until(td.Clock, at)
	if wait <= 0 {
		td.Deliver(step)
		return
	}
	td.AfterFunc(wait, func() { td.Deliver(step) })
}
