package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-midisynth/theme"
)

// TraceGrid maps samples in [-1, 1] onto a width x height grid of trace
// glyphs, row 0 at the top. Each column shows the sample at the centre of
// its slice of the window.
func TraceGrid(samples []float32, width, height int, glyphs []rune) [][]rune {
	if width <= 0 || height <= 0 || len(glyphs) == 0 {
		return nil
	}
	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	if len(samples) == 0 {
		return grid
	}
	steps := height * len(glyphs)
	for col := 0; col < width; col++ {
		idx := (2*col + 1) * len(samples) / (2 * width)
		v := float64(samples[idx])
		if v < -1 {
			v = -1
		} else if v > 1 {
			v = 1
		}
		level := int((v + 1) / 2 * float64(steps-1))
		row := height - 1 - level/len(glyphs)
		grid[row][col] = glyphs[level%len(glyphs)]
	}
	return grid
}

// RenderScope draws the oscilloscope, brighter towards the top
func RenderScope(samples []float32, width, height int, th *theme.Theme) string {
	grid := TraceGrid(samples, width, height, th.Symbols.Trace)
	lines := make([]string, len(grid))
	for r, row := range grid {
		norm := theme.RoleAccent
		if height > 1 {
			norm = theme.RoleMuted + (theme.RoleSuccess-theme.RoleMuted)*float64(height-1-r)/float64(height-1)
		}
		lines[r] = lipgloss.NewStyle().Foreground(th.Color(norm)).Render(string(row))
	}
	return strings.Join(lines, "\n")
}
