package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Transport
	Playing   rune // ▶
	Paused    rune // ‖
	Recording rune // ●

	// Level meter
	MeterFull  rune // █
	MeterEmpty rune // ·
	MeterPeak  rune // ▌

	// Scope trace, from the bottom of a cell to the top
	Trace []rune

	// Records list
	Replaying rune // ♪
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Plasma()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Playing:   '▶',
			Paused:    '‖',
			Recording: '●',

			MeterFull:  '█',
			MeterEmpty: '·',
			MeterPeak:  '▌',

			Trace: []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'},

			Replaying: '♪',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return t.Color(RoleBG)
}

func (t *Theme) Surface() lipgloss.Color {
	return t.Color(RoleSurface)
}

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

func (t *Theme) Active() lipgloss.Color {
	return t.Color(RoleActive)
}

func (t *Theme) Cursor() lipgloss.Color {
	return t.Color(RoleCursor)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.Color(RoleWarning)
}

func (t *Theme) Success() lipgloss.Color {
	return t.Color(RoleSuccess)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}
