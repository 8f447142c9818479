package midi

import (
	"context"
	"sync"

	"go-stepseq/clock"
	"go-stepseq/debug"
)

// Switcher keeps a Slot pointed at a live trigger port as ports come and go.
// With no preferred name it follows the first available port.
type Switcher struct {
	Slot *Slot

	ctx   context.Context
	want  string
	open  func(name string) (*Output, error)
	ports func() []string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSwitcher opens ports with OpenOutput; ports lists candidates for
// failover when the preferred port is not pinned
func NewSwitcher(ctx context.Context, c clock.Clock, want string, ports func() []string) *Switcher {
	return &Switcher{
		Slot:  &Slot{},
		ctx:   ctx,
		want:  want,
		open:  func(name string) (*Output, error) { return OpenOutput(name, c) },
		ports: ports,
	}
}

// Connect tries the preferred (or first) port once
func (s *Switcher) Connect() error {
	return s.install(s.want)
}

func (s *Switcher) install(name string) error {
	out, err := s.open(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	go out.Run(runCtx)

	if prev := s.Slot.Set(out); prev != nil {
		prev.Close()
	}
	debug.Log("midi", "trigger output: %s", out.Name())
	return nil
}

func (s *Switcher) remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if prev := s.Slot.Set(nil); prev != nil {
		prev.Close()
		debug.Log("midi", "trigger output gone: %s", prev.Name())
	}
}

// Handle reacts to output events and reports whether the slot changed
func (s *Switcher) Handle(ev DeviceEvent) bool {
	current := s.Slot.Current()
	switch ev.Type {
	case OutputConnected:
		if current != nil {
			return false
		}
		if s.want != "" && ev.ID != s.want {
			return false
		}
		if err := s.install(ev.ID); err != nil {
			debug.Log("midi", "open %s: %v", ev.ID, err)
			return false
		}
		return true

	case OutputDisconnected:
		if current == nil || current.Name() != ev.ID {
			return false
		}
		s.remove()
		if s.want == "" && s.ports != nil {
			for _, name := range s.ports() {
				if name == ev.ID {
					continue
				}
				if err := s.install(name); err == nil {
					break
				}
			}
		}
		return true
	}
	return false
}

// Name is the current port name, empty when none
func (s *Switcher) Name() string {
	if o := s.Slot.Current(); o != nil {
		return o.Name()
	}
	return ""
}

// Close shuts the current output
func (s *Switcher) Close() {
	s.remove()
}
