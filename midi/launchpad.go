package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go-stepseq/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var ledSendCount uint64

// LaunchpadController handles a Novation Launchpad X
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()

	mu      sync.Mutex // guards padChan against Close
	closed  bool
	padChan chan PadEvent
}

// NewLaunchpadController switches the device to programmer mode and listens for pads
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:      id,
		inPort:  inPort,
		outPort: outPort,
		padChan: make(chan PadEvent, 32),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send

		// Programmer mode: F0 00 20 29 02 0C 00 7F F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))
		// Brightness max: F0 00 20 29 02 0C 08 7F F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, lp.handle)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func (lp *LaunchpadController) handle(msg gomidi.Message, timestampms int32) {
	var channel, note, velocity, cc, value uint8

	switch {
	case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
		if row, col := noteToRowCol(note); row >= 0 {
			lp.emit(PadEvent{Row: row, Col: col, Velocity: velocity})
		}
	case msg.GetControlChange(&channel, &cc, &value) && value > 0:
		if row, col := ccToRowCol(cc); row >= 0 {
			lp.emit(PadEvent{Row: row, Col: col, Velocity: value})
		}
	}
}

func (lp *LaunchpadController) emit(ev PadEvent) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.closed {
		return
	}
	select {
	case lp.padChan <- ev:
	default:
		debug.Log("ctrl", "%s: pad event dropped", lp.id)
	}
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

// SetLEDBatch sends one message per pad; velocity picks the palette color.
// Grid pads take NoteOn, the scene column and top row take CC.
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	for _, u := range updates {
		note := rowColToNote(u.Row, u.Col)
		color := mapRGBToLaunchpad(u.Color)
		msg := gomidi.NoteOn(u.Channel, note, color)
		if u.Col == 8 || u.Row == 8 {
			msg = gomidi.ControlChange(u.Channel, note, color)
		}
		if err := lp.send(msg); err != nil {
			return err
		}
	}

	count := atomic.AddUint64(&ledSendCount, uint64(len(updates)))
	if count%100 < uint64(len(updates)) {
		debug.Log("lp-send", "batch count=%d (this batch=%d)", count, len(updates))
	}
	return nil
}

// mapRGBToLaunchpad finds the nearest Launchpad X palette color for an RGB value
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	// {velocity, R, G, B}
	palette := [][4]uint8{
		{0, 0, 0, 0},         // off
		{5, 255, 0, 0},       // red
		{9, 255, 100, 0},     // orange
		{13, 255, 200, 0},    // yellow
		{21, 0, 255, 0},      // bright green
		{43, 40, 60, 120},    // dim blue
		{45, 0, 100, 255},    // blue
		{49, 150, 0, 200},    // purple
		{119, 255, 255, 255}, // white
	}

	bestMatch := uint8(0)
	bestDist := 1 << 30
	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	for _, p := range palette {
		pr, pg, pb := int(p[1]), int(p[2]), int(p[3])
		dist := (r-pr)*(r-pr) + (g-pg)*(g-pg) + (b-pb)*(b-pb)
		if dist < bestDist {
			bestDist = dist
			bestMatch = p[0]
		}
	}
	return bestMatch
}

// Close blanks the step rows and stops listening
func (lp *LaunchpadController) Close() error {
	if lp.send != nil {
		var off [16]bool
		lp.SetLEDBatch(StepLEDs(off, -1, false))
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if !lp.closed {
		lp.closed = true
		close(lp.padChan)
	}
	return nil
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (scene buttons) = notes 19, 29, ... 89
// Top row:   Row 8 = CC 91-98

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	// scene buttons arrive as CC 19, 29 ... 89 in programmer mode
	if cc%10 == 9 && cc >= 19 && cc <= 89 {
		return int(cc/10) - 1, 8
	}
	return -1, -1
}
