package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-midisynth/sequencer"
	"go-midisynth/theme"
)

// RenderEvents shows the newest entries first, at most height lines
func RenderEvents(entries []sequencer.Entry, height int, th *theme.Theme) string {
	title := lipgloss.NewStyle().Foreground(th.Accent()).Render("Events")
	if height > 0 && len(entries) > height {
		entries = entries[:height]
	}
	style := lipgloss.NewStyle().Foreground(th.FG())
	lines := []string{title}
	for _, e := range entries {
		lines = append(lines, style.Render(e.String()))
	}
	return strings.Join(lines, "\n")
}
