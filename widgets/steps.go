package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-stepseq/theme"
)

// StepSymbol picks the glyph for one cell. playhead and cursor are step
// indexes, -1 for none.
func StepSymbol(sym theme.Symbols, step int, active bool, playhead, cursor int) rune {
	onCursor := step == cursor
	switch {
	case step == playhead && onCursor:
		return sym.CursorPlayhead
	case step == playhead:
		return sym.StepPlayhead
	case active && onCursor:
		return sym.CursorActive
	case active:
		return sym.StepActive
	case onCursor:
		return sym.CursorEmpty
	case step%4 == 0:
		return sym.StepDownbeat
	}
	return sym.StepEmpty
}

// RenderStepRow draws the 16 cells, grouped in beats of four
func RenderStepRow(th *theme.Theme, steps [16]bool, playhead, cursor int) string {
	var out strings.Builder
	for i, active := range steps {
		if i > 0 {
			if i%4 == 0 {
				out.WriteString("  ")
			} else {
				out.WriteString(" ")
			}
		}

		color := th.Muted()
		switch {
		case i == playhead:
			color = th.Success()
		case i == cursor:
			color = th.Cursor()
		case active:
			color = th.Active()
		case i%4 == 0:
			color = th.Downbeat()
		}
		style := lipgloss.NewStyle().Foreground(color)
		out.WriteString(style.Render(string(StepSymbol(th.Symbols, i, active, playhead, cursor))))
	}
	return out.String()
}

// RenderBeatRuler labels each beat above a step row
func RenderBeatRuler(th *theme.Theme) string {
	var out strings.Builder
	for beat := 1; beat <= 4; beat++ {
		if beat > 1 {
			out.WriteString("  ")
		}
		out.WriteString(fmt.Sprintf("%-7d", beat))
	}
	return lipgloss.NewStyle().Foreground(th.Muted()).Render(strings.TrimRight(out.String(), " "))
}
