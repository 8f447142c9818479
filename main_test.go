package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"go-stepseq/config"
	"go-stepseq/debug"
	"go-stepseq/sequencer"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs, oldFlags := os.Args, flag.CommandLine
	os.Args = append([]string{"go-stepseq"}, args...)
	flag.CommandLine = flag.NewFlagSet("go-stepseq", flag.ContinueOnError)
	t.Cleanup(func() {
		os.Args, flag.CommandLine = oldArgs, oldFlags
	})
}

func TestRunReturnsConfigurationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	withArgs(t, "-config", path, "-bpm", "0", "-save")

	if err := run(); !errors.Is(err, sequencer.ErrConfiguration) {
		t.Errorf("want configuration error, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("rejected config must not be saved, stat: %v", err)
	}
}

func TestRunSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	withArgs(t, "-config", path, "-bpm", "96", "-save")

	if err := run(); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 96.0, cfg.Tempo; want != got {
		t.Errorf("want tempo %v, got %v", want, got)
	}
}

func TestDebugPath(t *testing.T) {
	if want, got := debug.DefaultPath(), debugPath(""); want != got {
		t.Errorf("want %s, got %s", want, got)
	}
	want := filepath.Join("/tmp", "rig", "debug.log")
	if got := debugPath(filepath.Join("/tmp", "rig", "live.json")); want != got {
		t.Errorf("want %s, got %s", want, got)
	}
}
