package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/youpy/go-wav"

	"go-stepseq/clock"
	"go-stepseq/sequencer"
)

// Render writes bars of the pattern as 16-bit stereo WAV. The scheduler runs
// exactly as it does live, ticked once per buffer on a synthetic clock, so the
// file shows where each kick really lands.
func Render(w io.Writer, opts sequencer.Options, bars int) error {
	if bars < 1 {
		return fmt.Errorf("%w: bars %d must be at least 1", sequencer.ErrConfiguration, bars)
	}

	clk := clock.NewManual(0)
	synth := NewSynth(clk)

	transport, err := sequencer.NewTransport(opts.Tempo)
	if err != nil {
		return err
	}
	pattern := opts.Pattern
	if pattern == nil {
		pattern = sequencer.NewPattern()
	}
	dispatcher := sequencer.NewDispatcher(pattern, nil, synth, nil)
	if opts.Envelope != (sequencer.Envelope{}) {
		dispatcher.Envelope = opts.Envelope
	}
	sched, err := sequencer.NewScheduler(transport, dispatcher, opts.LookAhead, opts.Interval)
	if err != nil {
		return err
	}
	sub, err := transport.Subdivision()
	if err != nil {
		return err
	}

	total := float64(bars*sequencer.NumSteps) * sub
	numSamples := uint32(math.Ceil(total * sampleRate))
	ww := wav.NewWriter(w, numSamples, 2, sampleRate, 16)

	buf := [][]float32{make([]float32, bufferSize), make([]float32, bufferSize)}
	samples := make([]wav.Sample, bufferSize)

	transport.Start(0)
	for written := uint32(0); written < numSamples; {
		now := float64(written) / sampleRate
		clk.Set(now)
		if _, err := sched.Tick(now); err != nil {
			return err
		}
		synth.Process(buf)

		n := numSamples - written
		if n > bufferSize {
			n = bufferSize
		}
		for i := uint32(0); i < n; i++ {
			samples[i].Values = [2]int{toPCM16(buf[0][i]), toPCM16(buf[1][i])}
		}
		if err := ww.WriteSamples(samples[:n]); err != nil {
			return err
		}
		written += n
	}
	return nil
}

func toPCM16(v float32) int {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int(v * math.MaxInt16)
}
