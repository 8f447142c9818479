package sequencer

import (
	"go-stepseq/debug"
)

// Note is one scheduled step: an index and the exact clock time it sounds
type Note struct {
	Step int
	Time float64
}

// Dispatcher fans a scheduled note out to the display, the internal voice and
// the hardware output. Any of the three may be nil.
type Dispatcher struct {
	Pattern  *Pattern
	Display  Display
	Voice    Voice
	Hardware HardwareOutput
	Trigger  Trigger
	Envelope Envelope

	// outage flags, so a dead sink is logged once rather than per note
	voiceDown    bool
	hardwareDown bool
}

// NewDispatcher wires sinks with the default trigger and kick envelope
func NewDispatcher(p *Pattern, display Display, voice Voice, hw HardwareOutput) *Dispatcher {
	return &Dispatcher{
		Pattern:  p,
		Display:  display,
		Voice:    voice,
		Hardware: hw,
		Trigger:  DefaultTrigger(),
		Envelope: Kick,
	}
}

// Dispatch always moves the playhead; audio and MIDI only fire on active steps
func (d *Dispatcher) Dispatch(n Note) {
	if d.Display != nil {
		d.Display.Highlight(n.Step, n.Time)
	}

	if d.Pattern == nil || !d.Pattern.Active(n.Step) {
		return
	}

	if d.Voice != nil {
		err := d.Voice.PlayEnvelope(n.Time, d.Envelope)
		d.voiceDown = d.track("audio", d.voiceDown, err)
	}

	if d.Hardware != nil {
		err := d.Hardware.Send(d.Trigger.On(), n.Time)
		if err == nil {
			err = d.Hardware.Send(d.Trigger.Off(), n.Time+d.Trigger.Gate)
		}
		d.hardwareDown = d.track("midi", d.hardwareDown, err)
	}
}

// track logs sink outages on transitions and returns the new down flag
func (d *Dispatcher) track(sink string, down bool, err error) bool {
	switch {
	case err != nil && !down:
		debug.Log("dispatch", "%s sink unavailable, skipping: %v", sink, err)
		return true
	case err == nil && down:
		debug.Log("dispatch", "%s sink back", sink)
		return false
	}
	return down
}
