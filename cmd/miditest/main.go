package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-stepseq/clock"
	"go-stepseq/midi"
	"go-stepseq/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "trigger":
		err = trigger(ctx, os.Args[2:])
	case "leds":
		err = testLEDs(ctx)
	case "poll":
		pollDevices(ctx)
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                  - List all MIDI ports")
	fmt.Println("  trigger [port] [hits] - Fire bass drum triggers at 120 BPM (first port if none given)")
	fmt.Println("  leds                  - Show a demo pattern on a Launchpad X")
	fmt.Println("  poll                  - Watch devices come and go")
}

func listPorts() error {
	fmt.Println("=== MIDI Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		fmt.Println("Inputs:")
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("Outputs:")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		return nil
	case <-time.After(3 * time.Second):
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return fmt.Errorf("port listing timed out")
	}
}

// trigger schedules hits on the timed output, one per beat
func trigger(ctx context.Context, args []string) error {
	port := ""
	hits := 4
	if len(args) > 0 {
		port = args[0]
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("%w: hits must be a positive number, got %q", sequencer.ErrConfiguration, args[1])
		}
		hits = n
	}

	clk := clock.NewMonotonic()
	out, err := midi.OpenOutput(port, clk)
	if err != nil {
		return err
	}
	defer out.Close()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go out.Run(runCtx)

	trig := sequencer.DefaultTrigger()
	beat := 60 / sequencer.DefaultTempo
	start := clk.Now() + 0.1
	for i := 0; i < hits; i++ {
		at := start + float64(i)*beat
		if err := out.Send(trig.On(), at); err != nil {
			return err
		}
		if err := out.Send(trig.Off(), at+trig.Gate); err != nil {
			return err
		}
	}
	fmt.Printf("Sending %d hits on %s (% X / % X)\n", hits, out.Name(), []byte(trig.On()), []byte(trig.Off()))

	for out.Pending() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	fmt.Println("Done!")
	return nil
}

func findLaunchpad() (drivers.In, drivers.Out) {
	var in drivers.In
	var out drivers.Out
	for _, p := range gomidi.GetInPorts() {
		if isLaunchpad(p.String()) {
			in = p
			break
		}
	}
	for _, p := range gomidi.GetOutPorts() {
		if isLaunchpad(p.String()) {
			out = p
			break
		}
	}
	return in, out
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

func testLEDs(ctx context.Context) error {
	in, out := findLaunchpad()
	if in == nil || out == nil {
		return fmt.Errorf("%w: no Launchpad found", sequencer.ErrSinkUnavailable)
	}
	fmt.Printf("Using %s\n", out.String())

	lp, err := midi.NewLaunchpadController(in.String(), in, out)
	if err != nil {
		return err
	}
	defer lp.Close()

	pattern, _ := sequencer.ParsePattern("x...x...x...x.x.")
	lights := midi.NewStepLights()
	lights.Attach(lp)

	fmt.Println("Walking the playhead; press pads to toggle, Ctrl+C to exit.")
	ticker := time.NewTicker(125 * time.Millisecond)
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-lp.PadEvents():
			if s := midi.PadToStep(ev.Row, ev.Col); s >= 0 {
				pattern.Toggle(s)
			}
		case <-ticker.C:
			lights.Show(pattern.Snapshot(), step, true)
			step = (step + 1) % sequencer.NumSteps
		}
	}
}

func pollDevices(ctx context.Context) {
	fmt.Println("Polling for device changes...")
	fmt.Println("Connect/disconnect devices to test. Ctrl+C to exit.")

	dm := midi.NewDeviceManager()
	go dm.Run(ctx)

	names := map[midi.DeviceEventType]string{
		midi.ControllerConnected:    "controller connected",
		midi.ControllerDisconnected: "controller disconnected",
		midi.OutputConnected:        "output connected",
		midi.OutputDisconnected:     "output disconnected",
	}
	for ev := range dm.Events() {
		fmt.Printf("[%s] %s: %s\n", time.Now().Format("15:04:05"), names[ev.Type], ev.ID)
	}
}
