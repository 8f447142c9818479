package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-stepseq/clock"
	"go-stepseq/sequencer"
	"go-stepseq/theme"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m, err := sequencer.NewManager(clock.NewManual(0), sequencer.DefaultOptions(), nil, nil, nil)
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
	return NewModel(m, NewPlayhead(), theme.Default())
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func waitPlaying(t *testing.T, m *sequencer.Manager, want bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for (m.State().State == sequencer.Playing) != want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for playing=%v", want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCursorAndToggle(t *testing.T) {
	m := newTestModel(t)

	m = press(m, runes("h")) // wraps to 15
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	m = press(m, runes("l"))
	m = press(m, runes("l"))
	m = press(m, runes("l"))
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})

	if want, got := "..x............x", m.Manager.Pattern().String(); want != got {
		t.Errorf("want pattern %q, got %q", want, got)
	}
}

func TestPlayheadFollowsTransport(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(PlayheadMsg(3))
	m = next.(Model)
	if want, got := -1, m.step; want != got {
		t.Errorf("stopped: want step %d, got %d", want, got)
	}
	if !strings.Contains(m.View(), "STOP") {
		t.Error("view should show STOP")
	}

	m = press(m, runes("p"))
	waitPlaying(t, m.Manager, true)

	next, _ = m.Update(PlayheadMsg(5))
	m = next.(Model)
	if view := m.View(); !strings.Contains(view, "PLAY") || !strings.Contains(view, "step:06") {
		t.Errorf("unexpected view:\n%s", view)
	}

	m = press(m, runes("p"))
	waitPlaying(t, m.Manager, false)
	next, _ = m.Update(UpdateMsg{})
	m = next.(Model)
	if want, got := -1, m.step; want != got {
		t.Errorf("after stop: want step %d, got %d", want, got)
	}
}

func TestStatusLine(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.View(), "out: none  lp: -  audio: off") {
		t.Errorf("unexpected status in:\n%s", m.View())
	}

	m.Status = func() Status { return Status{Output: "RD-6", Audio: true} }
	next, _ := m.Update(DeviceMsg{})
	m = next.(Model)
	if !strings.Contains(m.View(), "out: RD-6  lp: -  audio: on") {
		t.Errorf("unexpected status in:\n%s", m.View())
	}
}

func TestQuitStopsTransport(t *testing.T) {
	m := newTestModel(t)
	m.Manager.Play()
	waitPlaying(t, m.Manager, true)

	next, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("want quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("want tea.QuitMsg")
	}
	if next.(Model).View() != "" {
		t.Error("view should be empty after quit")
	}
	waitPlaying(t, m.Manager, false)
}

func TestPlayheadKeepsLatest(t *testing.T) {
	p := NewPlayhead()
	p.Deliver(1)
	p.Deliver(2)
	p.Deliver(3)
	if want, got := 3, <-p.ch; want != got {
		t.Errorf("want %d, got %d", want, got)
	}
	select {
	case s := <-p.ch:
		t.Errorf("stale step %d left behind", s)
	default:
	}
}
