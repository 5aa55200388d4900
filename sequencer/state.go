package sequencer

import (
	"go-midisynth/pitch"
	"go-midisynth/synth"
)

// State is the session state the UI renders. The Manager owns the live copy
// and hands out snapshots.
type State struct {
	Synth         synth.Config `json:"synth"`
	BaseFrequency float64      `json:"baseFrequency"`
	Playing       bool         `json:"playing"`
	Recording     bool         `json:"recording"`

	// RecordingLen is the note count of the record in progress.
	RecordingLen int `json:"-"`
	// Replays is the number of running replays.
	Replays int `json:"-"`
	// Inputs is the number of connected MIDI inputs.
	Inputs int `json:"-"`
	// LastNote is the most recent key press, zero before the first one.
	LastNote pitch.Note `json:"-"`
}

// NewState creates a new state with defaults
func NewState() State {
	return State{
		Synth:         synth.DefaultConfig(),
		BaseFrequency: pitch.DefaultBase,
	}
}

// NoInput reports whether no keyboard is connected.
func (s State) NoInput() bool { return s.Inputs == 0 }
