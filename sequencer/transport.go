package sequencer

import (
	"fmt"
	"math"
)

// DefaultTempo is the reference tempo in BPM
const DefaultTempo = 120.0

// PlayState is the transport state machine position
type PlayState int

const (
	Stopped PlayState = iota
	Playing
)

func (s PlayState) String() string {
	if s == Playing {
		return "play"
	}
	return "stop"
}

// TransportState is a read-only copy of the transport for the UI
type TransportState struct {
	Tempo        float64
	State        PlayState
	Step         int     // next step to be scheduled
	NextNoteTime float64 // clock seconds
}

// Transport holds tempo, play flag, current step and the next-note deadline.
// It has a single owner (the scheduler loop) and no locking of its own.
type Transport struct {
	tempo        float64
	playing      bool
	step         int
	nextNoteTime float64
}

// NewTransport creates a stopped transport at bpm
func NewTransport(bpm float64) (*Transport, error) {
	if err := checkTempo(bpm); err != nil {
		return nil, err
	}
	return &Transport{tempo: bpm}, nil
}

func checkTempo(bpm float64) error {
	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return fmt.Errorf("%w: tempo %v must be a positive BPM", ErrConfiguration, bpm)
	}
	return nil
}

// Start resets the playback position; a no-op while already playing
func (t *Transport) Start(now float64) {
	if t.playing {
		return
	}
	t.playing = true
	t.step = 0
	t.nextNoteTime = now
}

// Stop leaves step and next-note time where they are
func (t *Transport) Stop() {
	t.playing = false
}

// Toggle flips play/stop and reports whether it is now playing
func (t *Transport) Toggle(now float64) bool {
	if t.playing {
		t.Stop()
	} else {
		t.Start(now)
	}
	return t.playing
}

// SetTempo applies from the next subdivision computed
func (t *Transport) SetTempo(bpm float64) error {
	if err := checkTempo(bpm); err != nil {
		return err
	}
	t.tempo = bpm
	return nil
}

// Subdivision is one sixteenth note at the current tempo, in seconds
func (t *Transport) Subdivision() (float64, error) {
	if err := checkTempo(t.tempo); err != nil {
		return 0, err
	}
	secondsPerBeat := 60.0 / t.tempo
	return 0.25 * secondsPerBeat, nil
}

// Advance moves to the next step one subdivision later
func (t *Transport) Advance() error {
	d, err := t.Subdivision()
	if err != nil {
		return err
	}
	t.nextNoteTime += d
	t.step = (t.step + 1) % NumSteps
	return nil
}

// Playing reports whether the transport is running
func (t *Transport) Playing() bool {
	return t.playing
}

// Step is the index of the next step to be scheduled
func (t *Transport) Step() int {
	return t.step
}

// NextNoteTime is the clock time of the next step
func (t *Transport) NextNoteTime() float64 {
	return t.nextNoteTime
}

func (t *Transport) Tempo() float64 {
	return t.tempo
}

// State copies the transport
func (t *Transport) State() TransportState {
	st := TransportState{
		Tempo:        t.tempo,
		Step:         t.step,
		NextNoteTime: t.nextNoteTime,
	}
	if t.playing {
		st.State = Playing
	}
	return st
}
