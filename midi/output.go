package midi

import (
	"container/heap"
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go-stepseq/clock"
	"go-stepseq/debug"
	"go-stepseq/sequencer"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// eventQueue is a min-heap on (At, seq)
type eventQueue []Event

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].At != q[j].At {
		return q[i].At < q[j].At
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)   { *q = append(*q, x.(Event)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

// Output fires timestamped messages on a MIDI port. Send only enqueues;
// Run sleeps until each deadline on the clock and writes the message.
type Output struct {
	name  string
	clock clock.Clock
	send  func(gomidi.Message) error

	mu     sync.Mutex
	queue  eventQueue
	seq    uint64
	closed bool
	failed error

	interrupt chan struct{} // queue head changed
}

// NewOutput wraps a gomidi sender
func NewOutput(name string, c clock.Clock, send func(gomidi.Message) error) *Output {
	return &Output{
		name:      name,
		clock:     c,
		send:      send,
		interrupt: make(chan struct{}, 1),
	}
}

// OpenOutput opens the named output port, or the first one when name is
// empty. No port at all is reported as sequencer.ErrSinkUnavailable.
func OpenOutput(name string, c clock.Clock) (*Output, error) {
	port, err := findOutPort(name)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", sequencer.ErrSinkUnavailable, port.String(), err)
	}
	debug.Log("midi", "output opened: %s", port.String())
	return NewOutput(port.String(), c, send), nil
}

func findOutPort(name string) (drivers.Out, error) {
	outs := gomidi.GetOutPorts()
	if len(outs) == 0 {
		return nil, fmt.Errorf("%w: no MIDI output ports", sequencer.ErrSinkUnavailable)
	}
	if name == "" {
		return outs[0], nil
	}
	for _, p := range outs {
		if p.String() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no MIDI output named %q", sequencer.ErrSinkUnavailable, name)
}

// Name is the port name
func (o *Output) Name() string {
	return o.name
}

// Send queues msg for delivery at clock time at
func (o *Output) Send(msg gomidi.Message, at float64) error {
	o.mu.Lock()
	if o.closed || o.failed != nil {
		err := o.failed
		o.mu.Unlock()
		if err == nil {
			err = fmt.Errorf("%w: %s closed", sequencer.ErrSinkUnavailable, o.name)
		}
		return err
	}
	o.seq++
	heap.Push(&o.queue, Event{At: at, Msg: msg, seq: o.seq})
	head := o.queue[0].seq == o.seq
	o.mu.Unlock()

	if head {
		select {
		case o.interrupt <- struct{}{}:
		default:
		}
	}
	return nil
}

// Pending returns the number of queued messages
func (o *Output) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Run delivers queued messages until ctx is done. Call once, in its own goroutine.
func (o *Output) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		o.mu.Lock()
		var next *Event
		if len(o.queue) > 0 {
			e := o.queue[0]
			next = &e
		}
		o.mu.Unlock()

		if next == nil {
			select {
			case <-ctx.Done():
				return
			case <-o.interrupt:
			}
			continue
		}

		if wait := clock.Until(o.clock, next.At); wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return
			case <-o.interrupt:
				// an earlier message arrived
				timer.Stop()
				continue
			case <-timer.C:
			}
		}

		o.mu.Lock()
		if len(o.queue) == 0 {
			// closed while waiting
			o.mu.Unlock()
			continue
		}
		e := heap.Pop(&o.queue).(Event)
		o.mu.Unlock()

		if err := o.send(e.Msg); err != nil {
			o.fail(err)
			continue
		}
		debug.Log("midi", "%s at=%.3f late=%.2fms % X", o.name, e.At, (o.clock.Now()-e.At)*1000, []byte(e.Msg))
	}
}

// fail marks the port dead and drops what was queued; missed triggers are
// not buffered
func (o *Output) fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failed == nil {
		debug.Log("midi", "%s failed: %v", o.name, err)
	}
	o.failed = fmt.Errorf("%w: %s: %v", sequencer.ErrSinkUnavailable, o.name, err)
	o.queue = o.queue[:0]
}

// Close stops accepting messages; queued ones are dropped
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.queue = o.queue[:0]
	return nil
}

// Slot holds the current output so a hot-plugged port can be swapped in
// while the scheduler keeps sending. An empty slot is unavailable.
type Slot struct {
	mu  sync.RWMutex
	out *Output
}

// Set installs o (nil empties the slot) and returns the previous output
func (s *Slot) Set(o *Output) *Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.out
	s.out = o
	return prev
}

// Current returns the installed output or nil
func (s *Slot) Current() *Output {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.out
}

func (s *Slot) Send(msg gomidi.Message, at float64) error {
	o := s.Current()
	if o == nil {
		return fmt.Errorf("%w: no MIDI output selected", sequencer.ErrSinkUnavailable)
	}
	return o.Send(msg, at)
}
