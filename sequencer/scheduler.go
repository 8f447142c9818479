package sequencer

import (
	"fmt"
	"time"

	"go-stepseq/debug"
)

// Scheduler defaults
const (
	DefaultLookAhead = 0.1                   // seconds of future kept scheduled
	DefaultInterval  = 25 * time.Millisecond // how often Tick must be invoked
)

// Stats counts scheduler activity
type Stats struct {
	Ticks uint64 // invocations that filled a window
	Notes uint64 // notes emitted
	Late  uint64 // notes emitted after their time (timer overran the window)
}

// Scheduler keeps the look-ahead window filled. Tick is the whole algorithm;
// the host only needs to call it at least every Interval.
type Scheduler struct {
	Transport  *Transport
	Dispatcher *Dispatcher
	LookAhead  float64
	Interval   time.Duration

	stats Stats
}

// NewScheduler validates that the window outlasts the re-arm interval
func NewScheduler(t *Transport, d *Dispatcher, lookAhead float64, interval time.Duration) (*Scheduler, error) {
	if t == nil || d == nil {
		return nil, fmt.Errorf("%w: scheduler needs a transport and a dispatcher", ErrConfiguration)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval %v must be positive", ErrConfiguration, interval)
	}
	if !(lookAhead > interval.Seconds()) {
		return nil, fmt.Errorf("%w: look-ahead %vs must exceed interval %v", ErrConfiguration, lookAhead, interval)
	}
	return &Scheduler{
		Transport:  t,
		Dispatcher: d,
		LookAhead:  lookAhead,
		Interval:   interval,
	}, nil
}

// Tick emits every note due before now+LookAhead, in step order, and reports
// whether the host should call again. A stopped transport fills nothing.
func (s *Scheduler) Tick(now float64) (bool, error) {
	t := s.Transport
	if !t.Playing() {
		return false, nil
	}
	if _, err := t.Subdivision(); err != nil {
		return false, err
	}

	s.stats.Ticks++
	horizon := now + s.LookAhead
	for t.NextNoteTime() < horizon {
		n := Note{Step: t.Step(), Time: t.NextNoteTime()}
		if n.Time < now {
			s.stats.Late++
			debug.LogEvery(16, "late", "step %d emitted %.1fms late", n.Step, (now-n.Time)*1000)
		}
		s.Dispatcher.Dispatch(n)
		s.stats.Notes++

		if err := t.Advance(); err != nil {
			return false, err
		}
	}
	return t.Playing(), nil
}

// Stats returns counters since construction
func (s *Scheduler) Stats() Stats {
	return s.stats
}
