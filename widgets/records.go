package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-midisynth/sequencer"
	"go-midisynth/theme"
)

// RecordLine formats one row of the records list.
func RecordLine(r sequencer.Record) string {
	return fmt.Sprintf("%2d  %-16s %3d notes  %5.2fs", r.ID, r.Name, r.Len(), r.Duration().Seconds())
}

// RenderRecords lists finished records, the newest last. Only the last
// limit records are shown.
func RenderRecords(records []sequencer.Record, limit int, th *theme.Theme) string {
	title := lipgloss.NewStyle().Foreground(th.Accent()).Render("Records")
	if len(records) == 0 {
		return title + "\n" + lipgloss.NewStyle().Foreground(th.Muted()).Render("  no recordings yet")
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	style := lipgloss.NewStyle().Foreground(th.FG())
	lines := []string{title}
	for _, r := range records {
		lines = append(lines, style.Render(RecordLine(r)))
	}
	return strings.Join(lines, "\n")
}
