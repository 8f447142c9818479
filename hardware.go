package main

import (
	"context"
	"sync"

	"go-stepseq/debug"
	"go-stepseq/midi"
	"go-stepseq/sequencer"
	"go-stepseq/tui"
)

// rig routes hot-plug events: the first Launchpad becomes the step grid,
// output ports feed the trigger switcher
type rig struct {
	manager *sequencer.Manager
	outputs *midi.Switcher
	lights  *midi.StepLights // nil when pad input is off
	audio   bool

	mu         sync.Mutex
	controller midi.Controller
	padCancel  context.CancelFunc
}

// run handles events until the channel closes, calling changed after each
// event that altered the hardware status
func (r *rig) run(ctx context.Context, events <-chan midi.DeviceEvent, changed func()) {
	for ev := range events {
		if r.handle(ctx, ev) {
			changed()
		}
	}
}

func (r *rig) handle(ctx context.Context, ev midi.DeviceEvent) bool {
	switch ev.Type {
	case midi.ControllerConnected:
		if r.lights == nil {
			return false
		}
		r.mu.Lock()
		if r.controller != nil {
			r.mu.Unlock()
			debug.Log("main", "ignoring second controller %s", ev.ID)
			return false
		}
		padCtx, cancel := context.WithCancel(ctx)
		r.controller = ev.Controller
		r.padCancel = cancel
		r.mu.Unlock()

		r.lights.Attach(ev.Controller)
		go midi.RoutePads(padCtx, ev.Controller, r.toggleStep, r.manager.StartStop)
		return true

	case midi.ControllerDisconnected:
		r.mu.Lock()
		if r.controller == nil || r.controller.ID() != ev.ID {
			r.mu.Unlock()
			return false
		}
		r.padCancel()
		r.controller = nil
		r.padCancel = nil
		r.mu.Unlock()

		r.lights.Attach(nil)
		return true

	case midi.OutputConnected, midi.OutputDisconnected:
		return r.outputs.Handle(ev)
	}
	return false
}

func (r *rig) toggleStep(step int) {
	if _, err := r.manager.ToggleStep(step); err != nil {
		debug.Log("main", "pad: %v", err)
	}
}

func (r *rig) status() tui.Status {
	st := tui.Status{
		Output: r.outputs.Name(),
		Audio:  r.audio,
	}
	r.mu.Lock()
	if r.controller != nil {
		st.Controller = r.controller.ID()
	}
	r.mu.Unlock()
	return st
}

// driveLights keeps the Launchpad in step without the full-screen UI
func driveLights(ctx context.Context, manager *sequencer.Manager, playhead *tui.Playhead, lights *midi.StepLights) {
	step := -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-manager.UpdateChan:
		case s := <-playhead.C():
			step = s
		}
		playing := manager.State().State == sequencer.Playing
		if !playing {
			step = -1
		}
		lights.Show(manager.Pattern().Snapshot(), step, playing)
	}
}
