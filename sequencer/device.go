package sequencer

import (
	"math"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Display receives playhead updates: highlight step at clock time at and
// clear all others. Delivery is fire-and-forget.
type Display interface {
	Highlight(step int, at float64)
}

// Voice renders a percussive envelope starting at a clock time
type Voice interface {
	PlayEnvelope(start float64, env Envelope) error
}

// HardwareOutput accepts timestamped MIDI messages submitted ahead of time.
// The output is responsible for firing them at the given clock time.
type HardwareOutput interface {
	Send(msg gomidi.Message, at float64) error
}

// DisplayFunc adapts a plain function to Display
type DisplayFunc func(step int, at float64)

func (f DisplayFunc) Highlight(step int, at float64) { f(step, at) }

// Displays fans a highlight out to every non-nil display
type Displays []Display

func (ds Displays) Highlight(step int, at float64) {
	for _, d := range ds {
		if d != nil {
			d.Highlight(step, at)
		}
	}
}

// Envelope is a pitch sweep plus an amplitude decay, both exponential ramps
// from start to end over Decay seconds.
type Envelope struct {
	FreqStart float64 // Hz
	FreqEnd   float64 // Hz, must be > 0 for an exponential ramp
	GainStart float64
	GainEnd   float64
	Decay     float64 // seconds
}

// Kick is the single drum voice: 150Hz swept to near zero over 0.5s
var Kick = Envelope{
	FreqStart: 150,
	FreqEnd:   0.01,
	GainStart: 1,
	GainEnd:   0.01,
	Decay:     0.5,
}

// ramp evaluates v0*(v1/v0)^(t/T), holding v0 before and v1 after
func ramp(v0, v1, t, T float64) float64 {
	if t <= 0 || T <= 0 {
		return v0
	}
	if t >= T {
		return v1
	}
	return v0 * math.Pow(v1/v0, t/T)
}

// Freq is the oscillator frequency t seconds after the start
func (e Envelope) Freq(t float64) float64 {
	return ramp(e.FreqStart, e.FreqEnd, t, e.Decay)
}

// Gain is the amplitude t seconds after the start
func (e Envelope) Gain(t float64) float64 {
	return ramp(e.GainStart, e.GainEnd, t, e.Decay)
}

// Phase integrates Freq from 0 to t, in radians
func (e Envelope) Phase(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t > e.Decay {
		t = e.Decay
	}
	f0, f1 := e.FreqStart, e.FreqEnd
	if f0 == f1 {
		return 2 * math.Pi * f0 * t
	}
	k := math.Log(f1/f0) / e.Decay
	return 2 * math.Pi * f0 * (math.Exp(k*t) - 1) / k
}
