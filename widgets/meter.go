package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"go-midisynth/synth"
	"go-midisynth/theme"
)

// MeterRange is the dB span shown by the level meter.
const MeterRange = 60

// MeterCells fills width cells for the RMS level and marks the peak.
func MeterCells(peak, rms float32, width int, sym theme.Symbols) []rune {
	if width <= 0 {
		return nil
	}
	cells := make([]rune, width)
	filled := cellsFor(rms, width)
	for i := range cells {
		if i < filled {
			cells[i] = sym.MeterFull
		} else {
			cells[i] = sym.MeterEmpty
		}
	}
	if p := cellsFor(peak, width); p > 0 && p > filled {
		cells[p-1] = sym.MeterPeak
	}
	return cells
}

func cellsFor(level float32, width int) int {
	db := synth.Decibels(level, MeterRange)
	n := int(float32(width) * (db + MeterRange) / MeterRange)
	return max(0, min(width, n))
}

// RenderMeter draws the meter and the peak in dBFS
func RenderMeter(m *synth.Meter, width int, th *theme.Theme) string {
	cells := MeterCells(m.Peak, m.RMS, width, th.Symbols)
	color := th.Success()
	if db := synth.Decibels(m.Peak, MeterRange); db > -3 {
		color = th.Warning()
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(string(cells))
	label := lipgloss.NewStyle().Foreground(th.Muted()).
		Render(fmt.Sprintf(" %6.1f dB", synth.Decibels(m.Peak, MeterRange)))
	return bar + label
}
