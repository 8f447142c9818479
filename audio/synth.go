package audio

import (
	"fmt"
	"math"

	"go-stepseq/clock"
	"go-stepseq/sequencer"
)

const (
	sampleRate = 44100
	bufferSize = 512
	queueSize  = 64

	// callbacks further than this from the sample count re-anchor it
	maxDrift = 0.02
)

// voice is a kick being rendered; owned by the audio callback
type voice struct {
	start float64
	env   sequencer.Envelope
}

// Synth renders kick envelopes at the clock time they were scheduled for.
// PlayEnvelope may be called from the scheduler goroutine while Process runs
// on the audio thread.
//
// Buffer times come from a running sample count anchored to the clock on the
// first callback, so callback jitter never skips or repeats audio.
type Synth struct {
	clock      clock.Clock
	sampleRate float64
	requests   *requestBuffer
	voices     []voice
	Level      float64

	anchor   float64 // clock time of frame 0
	frames   uint64  // frames rendered since anchor
	anchored bool
}

// NewSynth creates a synth reading times from c
func NewSynth(c clock.Clock) *Synth {
	return &Synth{
		clock:      c,
		sampleRate: sampleRate,
		requests:   newRequestBuffer(queueSize),
		voices:     make([]voice, 0, queueSize),
		Level:      0.8,
	}
}

// PlayEnvelope queues a kick starting at clock time start
func (s *Synth) PlayEnvelope(start float64, env sequencer.Envelope) error {
	if !(env.Decay > 0) || !(env.FreqStart > 0) || !(env.FreqEnd > 0) || !(env.GainStart > 0) || !(env.GainEnd > 0) {
		return fmt.Errorf("%w: envelope %+v needs positive ramps", sequencer.ErrConfiguration, env)
	}
	if !s.requests.push(request{start: start, env: env}) {
		return fmt.Errorf("%w: voice queue full", sequencer.ErrSinkUnavailable)
	}
	return nil
}

// Process fills non-interleaved output buffers that follow on from the
// previous call.
func (s *Synth) Process(out [][]float32) {
	for i := range out {
		for j := range out[i] {
			out[i][j] = 0
		}
	}
	if len(out) == 0 {
		return
	}

	bufStart := s.bufferStart()
	s.requests.drain(func(r request) {
		s.voices = append(s.voices, voice{start: r.start, env: r.env})
	})

	n := len(out[0])
	live := s.voices[:0]
	for _, v := range s.voices {
		if s.render(out, v, bufStart, n) {
			live = append(live, v)
		}
	}
	s.voices = live
	s.frames += uint64(n)
}

// bufferStart is the clock time of the next frame. The clock only resets the
// count on the first call or once it has drifted past maxDrift.
func (s *Synth) bufferStart() float64 {
	now := s.clock.Now()
	at := s.anchor + float64(s.frames)/s.sampleRate
	if !s.anchored || math.Abs(now-at) > maxDrift {
		s.anchor, s.frames, s.anchored = now, 0, true
		return now
	}
	return at
}

// render mixes v into out and reports whether it still sounds after this buffer
func (s *Synth) render(out [][]float32, v voice, bufStart float64, n int) bool {
	for i := 0; i < n; i++ {
		t := bufStart + float64(i)/s.sampleRate - v.start
		if t < 0 {
			continue
		}
		if t >= v.env.Decay {
			return false
		}
		sample := float32(s.Level * v.env.Gain(t) * math.Sin(v.env.Phase(t)))
		for ch := range out {
			out[ch][i] += sample
		}
	}
	end := bufStart + float64(n)/s.sampleRate - v.start
	return end < v.env.Decay
}

// Voices is the number of kicks currently sounding or pending placement
func (s *Synth) Voices() int {
	return len(s.voices)
}
