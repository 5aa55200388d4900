// Package pitch maps MIDI note numbers to note names and equal-tempered
// frequencies.
package pitch

import (
	"math"
	"strconv"
	"strings"
)

// DefaultBase is the reference frequency of note 49.
const DefaultBase = 440.0

// ReferenceNote is the note number that sounds exactly at the base frequency.
const ReferenceNote = 49

// Unknown is returned for notes that cannot be identified.
const Unknown = "Unknown"

// Pitch class names, sharp and flat spellings share one entry.
var classNames = [12]string{"C", "C#/D♭", "D", "D#/E♭", "E", "F", "F#/G♭", "G", "G#/A♭", "A", "A#/B♭", "B"}

// Note is a single identified note. It is a value type and is never mutated
// after creation.
type Note struct {
	Number    int     `json:"noteNumber"`
	Name      string  `json:"noteName"`
	Frequency float64 `json:"noteFrequency"`
}

// Identify returns the display name of a note number, e.g. 48 -> "C4".
//
// The octave is inserted in front of every accidental of a two-spelling pitch
// class, so 49 becomes "C4#/D4♭". Note 0 has no name.
func Identify(n int) string {
	if n == 0 {
		return Unknown
	}
	octave := strconv.Itoa(int(math.Round(float64(n) / 12.0)))
	class := n % 12
	if class < 0 {
		class = -class
	}
	name := classNames[class]
	if len(name) == 1 {
		return name + octave
	}
	name = strings.Replace(name, "#", octave+"#", 1)
	return strings.Replace(name, "♭", octave+"♭", 1)
}

// IdentifyBytes identifies the note byte of a raw MIDI message. Messages
// without a note byte are Unknown.
func IdentifyBytes(data []byte) string {
	if len(data) < 2 {
		return Unknown
	}
	return Identify(int(data[1]))
}

// Frequency returns base × 2^((n−49)/12).
func Frequency(n int, base float64) float64 {
	return math.Pow(2, float64(n-ReferenceNote)/12.0) * base
}

// Mapper binds the note functions to one base frequency.
type Mapper struct {
	Base float64
}

// NewMapper returns a Mapper for base, falling back to DefaultBase when base
// is not a positive finite number.
func NewMapper(base float64) Mapper {
	if !(base > 0) || math.IsInf(base, 0) {
		base = DefaultBase
	}
	return Mapper{Base: base}
}

func (m Mapper) Frequency(n int) float64 { return Frequency(n, m.Base) }

// Note builds the Note for n.
func (m Mapper) Note(n int) Note {
	return Note{Number: n, Name: Identify(n), Frequency: m.Frequency(n)}
}

// NewNote is a shorthand for NewMapper(base).Note(n).
func NewNote(n int, base float64) Note {
	return NewMapper(base).Note(n)
}
