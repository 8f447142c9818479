package midi

import gomidi "gitlab.com/gomidi/midi/v2"

// Event is a message waiting for its delivery time (clock seconds)
type Event struct {
	At  float64
	Msg gomidi.Message

	seq uint64 // insertion order, keeps equal times FIFO
}
