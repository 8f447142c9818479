package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-stepseq/sequencer"
)

// SchedulerConfig tunes the look-ahead loop
type SchedulerConfig struct {
	LookAheadMs float64 `json:"lookAheadMs"`
	IntervalMs  float64 `json:"intervalMs"`
}

// OutputConfig defines the hardware trigger output
type OutputConfig struct {
	PortName string `json:"portName,omitempty"` // empty = first available
	Channel  int    `json:"channel"`            // 1-16
	Kit      string `json:"kit,omitempty"`      // drum machine note map, overrides note
	Drum     string `json:"drum,omitempty"`     // kit slot, kick when empty
	Note     int    `json:"note"`
	Velocity int    `json:"velocity"`
	GateMs   int    `json:"gateMs"`
}

// AudioConfig toggles the internal kick
type AudioConfig struct {
	Enabled bool    `json:"enabled"`
	Level   float64 `json:"level,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette        string `json:"palette,omitempty"` // GPL file, built-in when empty
	LaunchpadInput bool   `json:"launchpadInput"`
}

// Config is the main configuration structure
type Config struct {
	Tempo     float64         `json:"tempo"`
	Pattern   string          `json:"pattern,omitempty"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Output    OutputConfig    `json:"output"`
	Audio     AudioConfig     `json:"audio"`
	UI        UIConfig        `json:"ui"`
}

// DefaultConfig returns 120 BPM with kick on 1 and 5, bass drum on channel 1
func DefaultConfig() *Config {
	return &Config{
		Tempo:   sequencer.DefaultTempo,
		Pattern: "x...x...........",
		Scheduler: SchedulerConfig{
			LookAheadMs: sequencer.DefaultLookAhead * 1000,
			IntervalMs:  float64(sequencer.DefaultInterval / time.Millisecond),
		},
		Output: OutputConfig{
			Channel:  1,
			Note:     int(sequencer.DefaultNote),
			Velocity: int(sequencer.DefaultVelocity),
			GateMs:   int(sequencer.DefaultGate * 1000),
		},
		Audio: AudioConfig{
			Enabled: true,
			Level:   0.8,
		},
		UI: UIConfig{
			LaunchpadInput: true,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-stepseq"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults; a missing file yields the defaults
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Trigger converts the output section, checking MIDI ranges
func (c *Config) Trigger() (sequencer.Trigger, error) {
	o := c.Output
	if o.Kit != "" {
		drum := o.Drum
		if drum == "" {
			drum = sequencer.DrumSlots[0]
		}
		note, err := sequencer.KitNote(o.Kit, drum)
		if err != nil {
			return sequencer.Trigger{}, err
		}
		o.Note = int(note)
	}
	if o.Channel < 1 || o.Channel > 16 {
		return sequencer.Trigger{}, fmt.Errorf("%w: output channel %d out of range 1-16", sequencer.ErrConfiguration, o.Channel)
	}
	if o.Note < 0 || o.Note > 127 || o.Velocity < 1 || o.Velocity > 127 {
		return sequencer.Trigger{}, fmt.Errorf("%w: note %d / velocity %d out of MIDI range", sequencer.ErrConfiguration, o.Note, o.Velocity)
	}
	t := sequencer.Trigger{
		Channel:  uint8(o.Channel - 1),
		Note:     uint8(o.Note),
		Velocity: uint8(o.Velocity),
		Gate:     float64(o.GateMs) / 1000,
	}
	return t, t.Validate()
}

// Options builds validated sequencer options
func (c *Config) Options() (sequencer.Options, error) {
	opts := sequencer.DefaultOptions()
	opts.Tempo = c.Tempo
	opts.LookAhead = c.Scheduler.LookAheadMs / 1000
	opts.Interval = time.Duration(c.Scheduler.IntervalMs * float64(time.Millisecond))

	if c.Pattern != "" {
		p, err := sequencer.ParsePattern(c.Pattern)
		if err != nil {
			return opts, err
		}
		opts.Pattern = p
	}

	trig, err := c.Trigger()
	if err != nil {
		return opts, err
	}
	opts.Trigger = trig

	if !(opts.Tempo > 0) {
		return opts, fmt.Errorf("%w: tempo %v must be positive", sequencer.ErrConfiguration, opts.Tempo)
	}
	if !(opts.LookAhead > opts.Interval.Seconds()) {
		return opts, fmt.Errorf("%w: look-ahead %vms must exceed interval %vms", sequencer.ErrConfiguration,
			c.Scheduler.LookAheadMs, c.Scheduler.IntervalMs)
	}
	return opts, nil
}
