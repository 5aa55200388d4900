package midi

import (
	"fmt"
	"strings"
	"time"
)

// Status bytes the synth reacts to. Only channel 1 (and 10 for drum pads)
// is recognized, the same as the devices it was built against.
const (
	StatusKeyPress       uint8 = 144
	StatusKeyRelease     uint8 = 128
	StatusDrumpadHold    uint8 = 153
	StatusDrumpadRelease uint8 = 137
	StatusKnobRotate     uint8 = 176
)

// Kind classifies a raw MIDI message by its first byte.
type Kind int

const (
	KindUnknown Kind = iota
	KindKeyPress
	KindKeyRelease
	KindDrumpadHold
	KindDrumpadRelease
	KindKnobRotate
)

func (k Kind) String() string {
	switch k {
	case KindKeyPress:
		return "Key Press"
	case KindKeyRelease:
		return "Key Release"
	case KindDrumpadHold:
		return "Drumpad Hold"
	case KindDrumpadRelease:
		return "Drumpad Release"
	case KindKnobRotate:
		return "Knob Rotate"
	}
	return "Unknown"
}

// Classify returns the message kind. Empty input is Unknown.
func Classify(data []byte) Kind {
	if len(data) == 0 {
		return KindUnknown
	}
	switch data[0] {
	case StatusKeyPress:
		return KindKeyPress
	case StatusKeyRelease:
		return KindKeyRelease
	case StatusDrumpadHold:
		return KindDrumpadHold
	case StatusDrumpadRelease:
		return KindDrumpadRelease
	case StatusKnobRotate:
		return KindKnobRotate
	}
	return KindUnknown
}

// Message is one raw MIDI message as received from an input port.
type Message struct {
	Data      []byte
	Timestamp time.Time
	Port      string
}

func (m Message) Kind() Kind { return Classify(m.Data) }

// Note returns the second byte. ok is false for messages too short to carry
// one.
func (m Message) Note() (note int, ok bool) {
	if len(m.Data) < 2 {
		return 0, false
	}
	return int(m.Data[1]), true
}

// Velocity returns the third byte.
func (m Message) Velocity() (velocity int, ok bool) {
	if len(m.Data) < 3 {
		return 0, false
	}
	return int(m.Data[2]), true
}

// Hex formats the bytes as "90 31 64".
func (m Message) Hex() string {
	var b strings.Builder
	for i, d := range m.Data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", d)
	}
	return b.String()
}
