package midi

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-stepseq/clock"
	"go-stepseq/sequencer"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func runOutput(t *testing.T, o *Output) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func receive(t *testing.T, ch <-chan gomidi.Message) gomidi.Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestOutputFiresInTimeOrder(t *testing.T) {
	c := clock.NewManual(10)
	sent := make(chan gomidi.Message, 8)
	o := NewOutput("test", c, func(m gomidi.Message) error {
		sent <- m
		return nil
	})

	trig := sequencer.DefaultTrigger()
	// queued out of order; all already due
	o.Send(trig.Off(), 9.05)
	o.Send(trig.On(), 9.0)
	runOutput(t, o)

	if want, got := trig.On(), receive(t, sent); !bytes.Equal(want, got) {
		t.Errorf("want % X first, got % X", []byte(want), []byte(got))
	}
	if want, got := trig.Off(), receive(t, sent); !bytes.Equal(want, got) {
		t.Errorf("want % X second, got % X", []byte(want), []byte(got))
	}
}

func TestOutputWaitsForDeadline(t *testing.T) {
	c := clock.NewManual(0)
	sent := make(chan gomidi.Message, 8)
	o := NewOutput("test", c, func(m gomidi.Message) error {
		sent <- m
		return nil
	})
	runOutput(t, o)

	// one hour ahead on the manual clock: must stay queued
	o.Send(sequencer.DefaultTrigger().On(), 3600)
	select {
	case m := <-sent:
		t.Fatalf("sent early: % X", []byte(m))
	case <-time.After(30 * time.Millisecond):
	}
	if want, got := 1, o.Pending(); want != got {
		t.Errorf("want %d pending, got %d", want, got)
	}

	// an earlier message interrupts the wait
	o.Send(sequencer.DefaultTrigger().Off(), 0)
	if want, got := sequencer.DefaultTrigger().Off(), receive(t, sent); !bytes.Equal(want, got) {
		t.Errorf("want % X, got % X", []byte(want), []byte(got))
	}
}

func TestOutputUnavailableAfterFailure(t *testing.T) {
	c := clock.NewManual(0)
	failed := make(chan struct{})
	var once sync.Once
	o := NewOutput("broken", c, func(m gomidi.Message) error {
		once.Do(func() { close(failed) })
		return errors.New("device gone")
	})
	runOutput(t, o)

	o.Send(sequencer.DefaultTrigger().On(), 0)
	<-failed

	deadline := time.After(2 * time.Second)
	for {
		err := o.Send(sequencer.DefaultTrigger().On(), 0)
		if errors.Is(err, sequencer.ErrSinkUnavailable) {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("want sink unavailable, got %v", err)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestOutputClosed(t *testing.T) {
	o := NewOutput("test", clock.NewManual(0), func(gomidi.Message) error { return nil })
	o.Close()
	if err := o.Send(sequencer.DefaultTrigger().On(), 0); !errors.Is(err, sequencer.ErrSinkUnavailable) {
		t.Errorf("want sink unavailable, got %v", err)
	}
}

func TestSlot(t *testing.T) {
	var s Slot
	if err := s.Send(sequencer.DefaultTrigger().On(), 0); !errors.Is(err, sequencer.ErrSinkUnavailable) {
		t.Errorf("empty slot: want sink unavailable, got %v", err)
	}

	o := NewOutput("a", clock.NewManual(0), func(gomidi.Message) error { return nil })
	if prev := s.Set(o); prev != nil {
		t.Errorf("want no previous output, got %v", prev.Name())
	}
	if err := s.Send(sequencer.DefaultTrigger().On(), 1); err != nil {
		t.Fatal(err)
	}
	if want, got := 1, o.Pending(); want != got {
		t.Errorf("want %d pending, got %d", want, got)
	}
}
