package midi

import (
	"context"
	"sync"

	"go-stepseq/debug"
)

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
)

// PadEvent is sent when a pad/button is pressed on a grid controller
type PadEvent struct {
	Row, Col int
	Velocity uint8
}

// LEDUpdate sets one pad color
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8 // RGB, mapped to the device palette
	Channel  uint8    // 0=static, 2=pulse
}

// Controller is a grid controller used as step display and step input
type Controller interface {
	ID() string
	Type() ControllerType
	PadEvents() <-chan PadEvent
	SetLEDBatch(updates []LEDUpdate) error
	Close() error
}

// Channel modes for LEDUpdate.Channel
const (
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)

// Step pad layout: steps 0-7 on the bottom row, 8-15 on the row above.
// The bottom scene button starts and stops.
const (
	StartStopRow = 0
	StartStopCol = 8
)

// Colors for the step rows
var (
	ColorStepOff      = [3]uint8{0, 0, 0}
	ColorStepDownbeat = [3]uint8{40, 60, 120}
	ColorStepActive   = [3]uint8{255, 100, 0}
	ColorPlayhead     = [3]uint8{255, 255, 255}
	ColorPlayheadHit  = [3]uint8{255, 0, 0}
	ColorPlaying      = [3]uint8{0, 255, 0}
)

// PadToStep converts a pad position to a step index, -1 if not a step pad
func PadToStep(row, col int) int {
	if col < 0 || col > 7 {
		return -1
	}
	switch row {
	case 0:
		return col
	case 1:
		return 8 + col
	}
	return -1
}

// StepToPad is the inverse of PadToStep
func StepToPad(step int) (row, col int) {
	return step / 8, step % 8
}

// StepLEDs renders the pattern with the playhead (-1 for none)
func StepLEDs(steps [16]bool, playhead int, playing bool) []LEDUpdate {
	updates := make([]LEDUpdate, 0, len(steps)+1)
	for i, active := range steps {
		color := ColorStepOff
		switch {
		case i == playhead && active:
			color = ColorPlayheadHit
		case i == playhead:
			color = ColorPlayhead
		case active:
			color = ColorStepActive
		case i%4 == 0:
			color = ColorStepDownbeat
		}
		row, col := StepToPad(i)
		updates = append(updates, LEDUpdate{Row: row, Col: col, Color: color})
	}

	transport := LEDUpdate{Row: StartStopRow, Col: StartStopCol, Color: ColorStepOff}
	if playing {
		transport.Color = ColorPlaying
		transport.Channel = ChannelPulse
	}
	return append(updates, transport)
}

// StepLights mirrors the pattern on whichever controller is attached.
// Only changed pads are sent.
type StepLights struct {
	mu         sync.Mutex
	controller Controller
	prev       map[[2]int]LEDUpdate
}

// NewStepLights creates lights with no controller attached
func NewStepLights() *StepLights {
	return &StepLights{prev: make(map[[2]int]LEDUpdate)}
}

// Attach swaps the controller (nil detaches) and forces a full redraw
func (sl *StepLights) Attach(c Controller) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	debug.Log("ctrl", "step lights attached to %v, resetting diff state", c != nil)
	sl.controller = c
	sl.prev = make(map[[2]int]LEDUpdate)
}

// Show sends the pads that differ from the last frame
func (sl *StepLights) Show(steps [16]bool, playhead int, playing bool) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.controller == nil {
		return
	}

	var updates []LEDUpdate
	for _, led := range StepLEDs(steps, playhead, playing) {
		key := [2]int{led.Row, led.Col}
		if prev, ok := sl.prev[key]; ok && prev == led {
			continue
		}
		sl.prev[key] = led
		updates = append(updates, led)
	}

	if len(updates) > 0 {
		if err := sl.controller.SetLEDBatch(updates); err != nil {
			debug.Log("ctrl", "led batch failed: %v", err)
		}
	}
}

// RoutePads turns presses on the step rows into step toggles and the
// start/stop pad into a transport toggle. Releases are ignored. Returns
// when the controller's event channel closes or ctx is done.
func RoutePads(ctx context.Context, c Controller, toggleStep func(step int), startStop func()) {
	events := c.PadEvents()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Velocity == 0 {
				continue
			}
			if ev.Row == StartStopRow && ev.Col == StartStopCol {
				startStop()
				continue
			}
			if step := PadToStep(ev.Row, ev.Col); step >= 0 {
				toggleStep(step)
			}
		}
	}
}
