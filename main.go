package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"go-stepseq/audio"
	"go-stepseq/clock"
	"go-stepseq/config"
	"go-stepseq/debug"
	"go-stepseq/midi"
	"go-stepseq/sequencer"
	"go-stepseq/theme"
	"go-stepseq/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "go-stepseq: %v\n", err)
		if errors.Is(err, sequencer.ErrConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "config file (default ~/.config/go-stepseq/config.json)")
		bpm        = flag.Float64("bpm", sequencer.DefaultTempo, "tempo in beats per minute")
		port       = flag.String("port", "", "MIDI output port (default: first available)")
		pattern    = flag.String("pattern", "", "16 steps, e.g. x...x...x...x...")
		noAudio    = flag.Bool("no-audio", false, "disable the internal kick")
		debugLog   = flag.Bool("debug", false, "write debug.log next to the config file")
		save       = flag.Bool("save", false, "write the effective config and exit")
		render     = flag.String("render", "", "write the pattern to a WAV file and exit")
		bars       = flag.Int("bars", 4, "bars to render")
		lineMode   = flag.Bool("repl", false, "line commands instead of the full-screen UI")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bpm":
			cfg.Tempo = *bpm
		case "port":
			cfg.Output.PortName = *port
		case "pattern":
			cfg.Pattern = *pattern
		case "no-audio":
			cfg.Audio.Enabled = !*noAudio
		}
	})

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	if *save {
		if *configPath != "" {
			return cfg.SaveFile(*configPath)
		}
		return cfg.Save()
	}

	if *render != "" {
		return renderFile(*render, opts, *bars)
	}

	if *debugLog {
		if err := debug.Enable(debugPath(*configPath)); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
	}
	defer debug.Disable()

	th, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clock.NewMonotonic()

	// Create MIDI device manager (handles hot-plug)
	deviceMgr := midi.NewDeviceManager()
	outputs := midi.NewSwitcher(ctx, clk, cfg.Output.PortName, deviceMgr.Outputs)
	if err := outputs.Connect(); err != nil {
		debug.Log("main", "no trigger output yet: %v", err)
	}
	defer outputs.Close()

	var voice sequencer.Voice
	audioOn := false
	if cfg.Audio.Enabled {
		synth := audio.NewSynth(clk)
		if cfg.Audio.Level > 0 {
			synth.Level = cfg.Audio.Level
		}
		sink, err := audio.NewSink(synth)
		if err == nil {
			err = sink.Start()
		}
		if err != nil {
			debug.Log("main", "audio disabled: %v", err)
		} else {
			defer sink.Stop()
			voice = synth
			audioOn = true
		}
	}

	playhead := tui.NewPlayhead()
	display := sequencer.Displays{
		sequencer.NewTimedDisplay(clk, playhead.Deliver),
		sequencer.DisplayFunc(func(step int, at float64) {
			debug.Log("display", "step %d at %.3f", step, at)
		}),
	}

	manager, err := sequencer.NewManager(clk, opts, display, voice, outputs.Slot)
	if err != nil {
		return err
	}
	go manager.Run(ctx)

	m := tui.NewModel(manager, playhead, th)
	var lights *midi.StepLights
	if cfg.UI.LaunchpadInput {
		lights = midi.NewStepLights()
		m.Lights = lights
	}

	hw := &rig{
		manager: manager,
		outputs: outputs,
		lights:  lights,
		audio:   audioOn,
	}
	m.Status = hw.status

	go deviceMgr.Run(ctx)

	if *lineMode {
		changed := func() {}
		if lights != nil {
			go driveLights(ctx, manager, playhead, lights)
			changed = func() {
				lights.Show(manager.Pattern().Snapshot(), -1, manager.State().State == sequencer.Playing)
			}
		}
		go hw.run(ctx, deviceMgr.Events(), changed)
		e := &env{
			manager: manager,
			status:  func() string { return hw.status().String() },
		}
		return repl(e)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	go hw.run(ctx, deviceMgr.Events(), func() { p.Send(tui.DeviceMsg{}) })

	_, err = p.Run()
	return err
}

func renderFile(path string, opts sequencer.Options, bars int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := audio.Render(f, opts, bars); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// debugPath puts debug.log beside an explicit config file
func debugPath(configPath string) string {
	if configPath == "" {
		return debug.DefaultPath()
	}
	return filepath.Join(filepath.Dir(configPath), "debug.log")
}
