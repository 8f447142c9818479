package sequencer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-stepseq/clock"
	"go-stepseq/debug"
)

// Tempo range for interactive nudging
const (
	MinTempo = 20.0
	MaxTempo = 300.0
)

// Options configures a Manager
type Options struct {
	Tempo     float64
	LookAhead float64       // seconds
	Interval  time.Duration // scheduler re-arm period
	Pattern   *Pattern      // nil means all steps off
	Trigger   Trigger
	Envelope  Envelope
}

// DefaultOptions is 120 BPM, 0.1s look-ahead every 25ms, bass drum on channel 1
func DefaultOptions() Options {
	return Options{
		Tempo:     DefaultTempo,
		LookAhead: DefaultLookAhead,
		Interval:  DefaultInterval,
		Trigger:   DefaultTrigger(),
		Envelope:  Kick,
	}
}

type commandKind int

const (
	cmdStartStop commandKind = iota
	cmdStart
	cmdStop
	cmdTempo
	cmdNudge
)

type command struct {
	kind commandKind
	bpm  float64 // absolute for cmdTempo, delta for cmdNudge
}

// Manager owns one sequencer instance: the transport and scheduler live on
// the Run goroutine, control calls reach it through a command channel.
type Manager struct {
	clock      clock.Clock
	pattern    *Pattern
	transport  *Transport
	dispatcher *Dispatcher
	scheduler  *Scheduler

	cmds chan command

	mu    sync.RWMutex // guards the published copies below
	state TransportState
	stats Stats
	err   error

	// Notify UI of updates
	UpdateChan chan struct{}
}

// NewManager validates opts and wires the sinks. Any sink may be nil.
func NewManager(c clock.Clock, opts Options, display Display, voice Voice, hw HardwareOutput) (*Manager, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: no clock", ErrConfiguration)
	}
	if err := opts.Trigger.Validate(); err != nil {
		return nil, err
	}
	transport, err := NewTransport(opts.Tempo)
	if err != nil {
		return nil, err
	}

	pattern := opts.Pattern
	if pattern == nil {
		pattern = NewPattern()
	}

	dispatcher := NewDispatcher(pattern, display, voice, hw)
	dispatcher.Trigger = opts.Trigger
	if opts.Envelope != (Envelope{}) {
		dispatcher.Envelope = opts.Envelope
	}

	scheduler, err := NewScheduler(transport, dispatcher, opts.LookAhead, opts.Interval)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		clock:      c,
		pattern:    pattern,
		transport:  transport,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		cmds:       make(chan command, 16),
		state:      transport.State(),
		UpdateChan: make(chan struct{}, 1),
	}
	return m, nil
}

// Run is the scheduler loop. It blocks until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	debug.Log("sched", "loop running: lookahead=%.3fs interval=%v", m.scheduler.LookAhead, m.scheduler.Interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-m.cmds:
			if m.apply(c) {
				// start fills the first window right away
				m.tick(timer)
			}
			m.publish()
		case <-timer.C:
			m.tick(timer)
			m.publish()
		}
	}
}

// apply runs a command on the loop goroutine and reports whether playback started
func (m *Manager) apply(c command) bool {
	t := m.transport
	was := t.Playing()
	switch c.kind {
	case cmdStartStop:
		t.Toggle(m.clock.Now())
	case cmdStart:
		t.Start(m.clock.Now())
	case cmdStop:
		t.Stop()
	case cmdTempo:
		if err := t.SetTempo(c.bpm); err != nil {
			debug.Log("sched", "tempo rejected: %v", err)
		}
	case cmdNudge:
		t.SetTempo(clampTempo(t.Tempo() + c.bpm))
	}
	if was != t.Playing() {
		debug.Log("sched", "transport %s at %.3f", t.State().State, m.clock.Now())
		if t.Playing() {
			m.setErr(nil)
		}
	}
	return !was && t.Playing()
}

// tick fills one window and re-arms the timer while playing
func (m *Manager) tick(timer *time.Timer) {
	rearm, err := m.scheduler.Tick(m.clock.Now())
	if err != nil {
		debug.Log("sched", "scheduling stopped: %v", err)
		m.transport.Stop()
		m.setErr(err)
		return
	}
	if rearm {
		timer.Reset(m.scheduler.Interval)
	}
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// publish copies loop-owned state for readers and pokes the UI
func (m *Manager) publish() {
	m.mu.Lock()
	m.state = m.transport.State()
	m.stats = m.scheduler.Stats()
	m.mu.Unlock()
	m.notifyUpdate()
}

func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

func (m *Manager) post(c command) {
	m.cmds <- c
}

// Control surface. None of these touch loop-owned state directly.

// StartStop toggles playback; starting always rewinds to step 0
func (m *Manager) StartStop() {
	m.post(command{kind: cmdStartStop})
}

// Play starts playback (no-op while playing)
func (m *Manager) Play() {
	m.post(command{kind: cmdStart})
}

// Stop stops playback; notes already dispatched still sound
func (m *Manager) Stop() {
	m.post(command{kind: cmdStop})
}

// SetTempo changes BPM from the next subdivision on
func (m *Manager) SetTempo(bpm float64) error {
	if err := checkTempo(bpm); err != nil {
		return err
	}
	m.post(command{kind: cmdTempo, bpm: bpm})
	return nil
}

// NudgeTempo adds delta BPM to the current tempo, clamped to MinTempo-MaxTempo.
// Nudges queued back to back all apply.
func (m *Manager) NudgeTempo(delta float64) {
	m.post(command{kind: cmdNudge, bpm: delta})
}

func clampTempo(bpm float64) float64 {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}

// ToggleStep flips a pattern cell. Safe from any goroutine.
func (m *Manager) ToggleStep(i int) (bool, error) {
	active, err := m.pattern.Toggle(i)
	if err != nil {
		return false, err
	}
	m.notifyUpdate()
	return active, nil
}

// Pattern returns the shared pattern store
func (m *Manager) Pattern() *Pattern {
	return m.pattern
}

// State returns the transport as of the last tick or command
func (m *Manager) State() TransportState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Stats returns scheduler counters as of the last tick
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Err is the configuration error that stopped playback, if any
func (m *Manager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}
