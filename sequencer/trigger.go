package sequencer

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Bass drum trigger agreed with drum machines (RD-6, T-8 ...)
const (
	DefaultNote     uint8   = 0x24
	DefaultVelocity uint8   = 0x7F
	DefaultGate     float64 = 0.05 // seconds between on and off
)

// Trigger is the fixed channel/note pair fired for every active step
type Trigger struct {
	Channel  uint8   // 0-15 on the wire (shown as 1-16)
	Note     uint8   // 0-127
	Velocity uint8   // 1-127
	Gate     float64 // seconds from on to off
}

// DefaultTrigger is note 0x24 on channel 1 with a 50ms gate
func DefaultTrigger() Trigger {
	return Trigger{
		Channel:  0,
		Note:     DefaultNote,
		Velocity: DefaultVelocity,
		Gate:     DefaultGate,
	}
}

// Validate checks the trigger fits the MIDI data ranges
func (t Trigger) Validate() error {
	switch {
	case t.Channel > 15:
		return fmt.Errorf("%w: channel %d out of range 1-16", ErrConfiguration, int(t.Channel)+1)
	case t.Note > 127:
		return fmt.Errorf("%w: note %d out of range 0-127", ErrConfiguration, t.Note)
	case t.Velocity == 0 || t.Velocity > 127:
		return fmt.Errorf("%w: velocity %d out of range 1-127", ErrConfiguration, t.Velocity)
	case !(t.Gate > 0):
		return fmt.Errorf("%w: gate %v must be positive", ErrConfiguration, t.Gate)
	}
	return nil
}

// On returns the note-on message, e.g. 90 24 7F
func (t Trigger) On() gomidi.Message {
	return gomidi.NoteOn(t.Channel, t.Note, t.Velocity)
}

// Off returns the matching note-off, e.g. 80 24 00
func (t Trigger) Off() gomidi.Message {
	return gomidi.NoteOff(t.Channel, t.Note)
}
