package sequencer

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-stepseq/clock"
)

func waitFor(t *testing.T, m *Manager, cond func(TransportState) bool) TransportState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if st := m.State(); cond(st) {
			return st
		}
		select {
		case <-m.UpdateChan:
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out, state %+v", m.State())
		}
	}
}

func startManager(t *testing.T, c clock.Clock, opts Options, rec *recorder) *Manager {
	t.Helper()
	m, err := NewManager(c, opts, rec, rec, rec)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return m
}

func TestManagerRejectsBadOptions(t *testing.T) {
	c := clock.NewManual(0)
	opts := DefaultOptions()
	opts.Tempo = -1
	if _, err := NewManager(c, opts, nil, nil, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("tempo: want configuration error, got %v", err)
	}

	opts = DefaultOptions()
	opts.LookAhead = 0.01
	if _, err := NewManager(c, opts, nil, nil, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("look-ahead: want configuration error, got %v", err)
	}

	opts = DefaultOptions()
	opts.Trigger.Channel = 16
	if _, err := NewManager(c, opts, nil, nil, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("trigger: want configuration error, got %v", err)
	}
}

func TestManagerStartFillsFirstWindow(t *testing.T) {
	c := clock.NewManual(0)
	p, _ := ParsePattern("x...x...........")
	opts := DefaultOptions()
	opts.Pattern = p
	rec := &recorder{}
	m := startManager(t, c, opts, rec)

	m.StartStop()
	st := waitFor(t, m, func(st TransportState) bool { return st.State == Playing })

	// the clock is frozen at 0: only step 0 fits in the 0.1s window
	if want, got := 1, st.Step; want != got {
		t.Errorf("want next step %d, got %d", want, got)
	}
	rec.mu.Lock()
	got := append([]highlight(nil), rec.highlights...)
	rec.mu.Unlock()
	if len(got) != 1 || got[0] != (highlight{0, 0}) {
		t.Errorf("want one highlight of step 0, got %v", got)
	}
}

func TestManagerFollowsClock(t *testing.T) {
	c := clock.NewManual(0)
	opts := DefaultOptions()
	opts.Interval = time.Millisecond
	opts.LookAhead = 0.05
	m := startManager(t, c, opts, &recorder{})

	m.Play()
	waitFor(t, m, func(st TransportState) bool { return st.State == Playing })

	c.Set(1.0)
	// 1.05 window: steps at 0 .. 1.0 are out, next is 1.125 = step 9
	st := waitFor(t, m, func(st TransportState) bool { return st.Step == 9 })
	if want, got := 1.125, st.NextNoteTime; want != got {
		t.Errorf("want next note time %v, got %v", want, got)
	}
}

func TestManagerRestartRewinds(t *testing.T) {
	c := clock.NewManual(0)
	opts := DefaultOptions()
	opts.Interval = time.Millisecond
	opts.LookAhead = 0.05
	m := startManager(t, c, opts, &recorder{})

	m.StartStop()
	waitFor(t, m, func(st TransportState) bool { return st.State == Playing })
	c.Set(0.7) // steps 0-5 emitted, step 6 next
	waitFor(t, m, func(st TransportState) bool { return st.Step == 6 })

	m.StartStop()
	st := waitFor(t, m, func(st TransportState) bool { return st.State == Stopped })
	if want, got := 6, st.Step; want != got {
		t.Errorf("stop keeps step: want %d, got %d", want, got)
	}

	c.Set(2.0)
	m.StartStop()
	st = waitFor(t, m, func(st TransportState) bool { return st.State == Playing })
	if want, got := 1, st.Step; want != got {
		t.Errorf("restart: want step 0 emitted and %d next, got %d", want, got)
	}
	if want, got := 2.125, st.NextNoteTime; want != got {
		t.Errorf("restart: want next note time %v, got %v", want, got)
	}
}

func TestManagerTempo(t *testing.T) {
	c := clock.NewManual(0)
	m := startManager(t, c, DefaultOptions(), &recorder{})

	if err := m.SetTempo(0); !errors.Is(err, ErrConfiguration) {
		t.Errorf("want configuration error, got %v", err)
	}
	m.SetTempo(140)
	waitFor(t, m, func(st TransportState) bool { return st.Tempo == 140 })

	m.NudgeTempo(1000)
	waitFor(t, m, func(st TransportState) bool { return st.Tempo == MaxTempo })
}

func TestManagerNudgesAccumulate(t *testing.T) {
	rec := &recorder{}
	m, err := NewManager(clock.NewManual(0), DefaultOptions(), rec, rec, rec)
	if err != nil {
		t.Fatal(err)
	}
	// queued before the loop publishes anything
	m.NudgeTempo(1)
	m.NudgeTempo(1)
	m.NudgeTempo(-0.5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	waitFor(t, m, func(st TransportState) bool { return st.Tempo == 121.5 })

	m.NudgeTempo(-1000)
	waitFor(t, m, func(st TransportState) bool { return st.Tempo == MinTempo })
}

func TestManagerToggleStep(t *testing.T) {
	m := startManager(t, clock.NewManual(0), DefaultOptions(), &recorder{})
	active, err := m.ToggleStep(3)
	if err != nil || !active {
		t.Fatalf("want step 3 on, got %v, %v", active, err)
	}
	if !m.Pattern().Active(3) {
		t.Error("pattern not updated")
	}
	if _, err := m.ToggleStep(16); err == nil {
		t.Error("want out of range error")
	}
}
