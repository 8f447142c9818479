package midi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-stepseq/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when controllers or output ports come and go
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller // set for ControllerConnected
	ID         string     // controller id or output port name
}

type DeviceEventType int

const (
	ControllerConnected DeviceEventType = iota
	ControllerDisconnected
	OutputConnected
	OutputDisconnected
)

// DeviceManager polls MIDI ports: it opens Launchpads as they appear and
// reports output ports so a trigger output can be (re)selected.
type DeviceManager struct {
	controllers map[string]Controller
	outputs     map[string]bool
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	// port listing, replaceable in tests
	listPorts func() ([]drivers.In, []drivers.Out)
}

// NewDeviceManager creates a device manager polling once a second
func NewDeviceManager() *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		outputs:     make(map[string]bool),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		listPorts: func() ([]drivers.In, []drivers.Out) {
			return gomidi.GetInPorts(), gomidi.GetOutPorts()
		},
	}
}

// Events returns a channel of connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Outputs returns the output port names seen on the last scan, sorted
func (dm *DeviceManager) Outputs() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	names := make([]string, 0, len(dm.outputs))
	for name := range dm.outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	// Port listing with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ins, outs := dm.listPorts()
		ch <- portsResult{inPorts: ins, outPorts: outs}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		debug.Log("devices", "port scan timed out, skipping")
		return
	}

	dm.scanOutputs(ctx, outPorts)
	dm.scanControllers(ctx, inPorts, outPorts)
}

func (dm *DeviceManager) scanOutputs(ctx context.Context, outPorts []drivers.Out) {
	seen := make(map[string]bool)
	for _, op := range outPorts {
		name := op.String()
		if isLaunchpad(name) {
			continue // LED port, not a trigger output
		}
		seen[name] = true
	}

	dm.mu.Lock()
	var added, removed []string
	for name := range seen {
		if !dm.outputs[name] {
			added = append(added, name)
		}
	}
	for name := range dm.outputs {
		if !seen[name] {
			removed = append(removed, name)
		}
	}
	dm.outputs = seen
	dm.mu.Unlock()

	sort.Strings(added)
	sort.Strings(removed)
	for _, name := range removed {
		dm.emit(ctx, DeviceEvent{Type: OutputDisconnected, ID: name})
	}
	for _, name := range added {
		dm.emit(ctx, DeviceEvent{Type: OutputConnected, ID: name})
	}
}

func (dm *DeviceManager) scanControllers(ctx context.Context, inPorts []drivers.In, outPorts []drivers.Out) {
	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		name := inPort.String()
		if !isLaunchpad(name) {
			continue
		}
		seenIDs[name] = true

		dm.mu.RLock()
		_, exists := dm.controllers[name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var outPort drivers.Out
		for _, op := range outPorts {
			if strings.EqualFold(op.String(), name) {
				outPort = op
				break
			}
		}

		lp, err := NewLaunchpadController(name, inPort, outPort)
		if err != nil {
			debug.Log("devices", "launchpad %s: %v", name, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[name] = lp
		dm.mu.Unlock()

		dm.emit(ctx, DeviceEvent{Type: ControllerConnected, Controller: lp, ID: name})
	}

	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
	}
	dm.mu.Unlock()

	for _, id := range toRemove {
		dm.emit(ctx, DeviceEvent{Type: ControllerDisconnected, ID: id})
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
