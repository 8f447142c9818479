package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-stepseq/sequencer"
)

func TestDefaultOptions(t *testing.T) {
	opts, err := DefaultConfig().Options()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 120.0, opts.Tempo; want != got {
		t.Errorf("tempo: want %v, got %v", want, got)
	}
	if want, got := 0.1, opts.LookAhead; want != got {
		t.Errorf("look-ahead: want %v, got %v", want, got)
	}
	if want, got := 25*time.Millisecond, opts.Interval; want != got {
		t.Errorf("interval: want %v, got %v", want, got)
	}
	if want, got := sequencer.DefaultTrigger(), opts.Trigger; want != got {
		t.Errorf("trigger: want %+v, got %+v", want, got)
	}
	if want, got := "x...x...........", opts.Pattern.String(); want != got {
		t.Errorf("pattern: want %q, got %q", want, got)
	}
}

func TestOptionsRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero tempo", func(c *Config) { c.Tempo = 0 }},
		{"short pattern", func(c *Config) { c.Pattern = "x..." }},
		{"channel", func(c *Config) { c.Output.Channel = 17 }},
		{"velocity", func(c *Config) { c.Output.Velocity = 0 }},
		{"gate", func(c *Config) { c.Output.GateMs = 0 }},
		{"window", func(c *Config) { c.Scheduler.LookAheadMs = 20 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if _, err := cfg.Options(); !errors.Is(err, sequencer.ErrConfiguration) {
				t.Errorf("want configuration error, got %v", err)
			}
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := DefaultConfig()
	cfg.Tempo = 133
	cfg.Output.PortName = "RD-6"
	if err := cfg.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Tempo != 133 || loaded.Output.PortName != "RD-6" {
		t.Errorf("unexpected config %+v", loaded)
	}
}

func TestLoadFileMissingAndPartial(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFile(filepath.Join(dir, "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 120.0, cfg.Tempo; want != got {
		t.Errorf("want defaults, got tempo %v", got)
	}

	path := filepath.Join(dir, "partial.json")
	os.WriteFile(path, []byte(`{"tempo": 90}`), 0644)
	cfg, err = LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tempo != 90 || cfg.Output.Channel != 1 {
		t.Errorf("partial file should keep defaults, got %+v", cfg)
	}

	os.WriteFile(path, []byte(`{"tempo": `), 0644)
	if _, err := LoadFile(path); err == nil {
		t.Error("want parse error")
	}
}

func TestTriggerFromKit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Kit = "rd8"
	cfg.Output.Drum = "snare"
	cfg.Output.Channel = 10
	trig, err := cfg.Trigger()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := uint8(40), trig.Note; want != got {
		t.Errorf("note: want %d, got %d", want, got)
	}
	if want, got := uint8(9), trig.Channel; want != got {
		t.Errorf("channel: want %d, got %d", want, got)
	}

	cfg.Output.Drum = ""
	if trig, _ := cfg.Trigger(); trig.Note != 36 {
		t.Errorf("kit without drum should use the kick, got %d", trig.Note)
	}

	cfg.Output.Kit = "808"
	if _, err := cfg.Trigger(); !errors.Is(err, sequencer.ErrConfiguration) {
		t.Errorf("want configuration error, got %v", err)
	}
}
