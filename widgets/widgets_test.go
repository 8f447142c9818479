package widgets

import (
	"strings"
	"testing"

	"go-stepseq/midi"
	"go-stepseq/theme"
)

func TestStepSymbol(t *testing.T) {
	sym := theme.Default().Symbols
	tests := []struct {
		name     string
		step     int
		active   bool
		playhead int
		cursor   int
		want     rune
	}{
		{"empty", 1, false, -1, -1, sym.StepEmpty},
		{"downbeat", 4, false, -1, -1, sym.StepDownbeat},
		{"active", 1, true, -1, -1, sym.StepActive},
		{"playhead", 1, true, 1, -1, sym.StepPlayhead},
		{"cursor empty", 1, false, -1, 1, sym.CursorEmpty},
		{"cursor active", 1, true, -1, 1, sym.CursorActive},
		{"cursor playhead", 1, false, 1, 1, sym.CursorPlayhead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StepSymbol(sym, tt.step, tt.active, tt.playhead, tt.cursor); got != tt.want {
				t.Errorf("want %c, got %c", tt.want, got)
			}
		})
	}
}

func TestRenderStepRowHasAllCells(t *testing.T) {
	th := theme.Default()
	var steps [16]bool
	steps[0] = true
	steps[4] = true
	row := RenderStepRow(th, steps, 8, 3)

	for _, r := range []rune{th.Symbols.StepActive, th.Symbols.StepPlayhead, th.Symbols.CursorEmpty, th.Symbols.StepDownbeat} {
		if !strings.ContainsRune(row, r) {
			t.Errorf("row %q is missing %c", row, r)
		}
	}
	if want, got := 2, strings.Count(row, string(th.Symbols.StepActive)); want != got {
		t.Errorf("want %d active cells, got %d", want, got)
	}
}

func TestRenderLaunchpad(t *testing.T) {
	var steps [16]bool
	steps[9] = true
	out := RenderLaunchpad(midi.StepLEDs(steps, -1, false))

	lines := strings.Split(out, "\n")
	if want, got := 2, len(lines); want != got {
		t.Fatalf("want %d rows, got %d", want, got)
	}
	// step 9 is on the top row; the stopped transport button is unlit
	if !strings.Contains(lines[0], "■") {
		t.Errorf("top row should show lit pads: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "□") {
		t.Errorf("start/stop pad should be unlit: %q", lines[1])
	}
}
