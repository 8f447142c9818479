package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-stepseq/midi"
	"go-stepseq/theme"
)

// RenderPad renders a single colored pad; unlit pads show as an outline
func RenderPad(color [3]uint8) string {
	if color == [3]uint8{} {
		return "□"
	}
	style := lipgloss.NewStyle().Foreground(theme.Hex(theme.RGB(color)))
	return style.Render("■")
}

// RenderLaunchpad mirrors the two step rows and their scene buttons as the
// hardware shows them (row 1 on top)
func RenderLaunchpad(updates []midi.LEDUpdate) string {
	var grid [2][9][3]uint8
	for _, u := range updates {
		if u.Row < 0 || u.Row > 1 || u.Col < 0 || u.Col > 8 {
			continue
		}
		grid[u.Row][u.Col] = u.Color
	}

	var lines []string
	for row := 1; row >= 0; row-- {
		var line strings.Builder
		for col := 0; col < 8; col++ {
			line.WriteString(RenderPad(grid[row][col]))
			line.WriteString(" ")
		}
		line.WriteString(" ")
		line.WriteString(RenderPad(grid[row][8]))
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color), name, desc)
}
