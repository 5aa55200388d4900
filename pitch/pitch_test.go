package pitch_test

import (
	"math"
	"testing"

	"go-midisynth/pitch"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "Unknown"},
		{48, "C4"},
		{49, "C4#/D4♭"},
		{57, "A5"},
		{60, "C5"},
		{6, "F1#/G1♭"},
		{5, "F0"},
		{11, "B1"},
		{127, "G11"},
	}
	for _, tt := range tests {
		if got := pitch.Identify(tt.n); got != tt.want {
			t.Errorf("Identify(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestIdentifyBytes(t *testing.T) {
	if got := pitch.IdentifyBytes(nil); got != pitch.Unknown {
		t.Errorf("IdentifyBytes(nil) = %q, want Unknown", got)
	}
	if got := pitch.IdentifyBytes([]byte{144}); got != pitch.Unknown {
		t.Errorf("IdentifyBytes(short) = %q, want Unknown", got)
	}
	if got := pitch.IdentifyBytes([]byte{144, 48, 100}); got != "C4" {
		t.Errorf("IdentifyBytes(48) = %q, want C4", got)
	}
}

func TestFrequencyReference(t *testing.T) {
	if got := pitch.Frequency(49, 440); got != 440.0 {
		t.Errorf("Frequency(49) = %v, want exactly 440", got)
	}
	if got := pitch.Frequency(61, 440); got != 880.0 {
		t.Errorf("Frequency(61) = %v, want exactly 880", got)
	}
	if got := pitch.Frequency(49, 432); got != 432.0 {
		t.Errorf("Frequency(49, 432) = %v, want base", got)
	}
}

func TestFrequencyMonotonic(t *testing.T) {
	prev := pitch.Frequency(21, pitch.DefaultBase)
	for n := 22; n <= 108; n++ {
		f := pitch.Frequency(n, pitch.DefaultBase)
		if !(f > prev) {
			t.Fatalf("Frequency(%d) = %v is not above Frequency(%d) = %v", n, f, n-1, prev)
		}
		prev = f
	}
}

func TestFrequencyOctave(t *testing.T) {
	for n := 0; n+12 <= 127; n++ {
		lo := pitch.Frequency(n, pitch.DefaultBase)
		hi := pitch.Frequency(n+12, pitch.DefaultBase)
		if math.Abs(hi-2*lo) > 1e-9*hi {
			t.Errorf("Frequency(%d) = %v, want 2 × %v", n+12, hi, lo)
		}
	}
}

func TestMapper(t *testing.T) {
	m := pitch.NewMapper(-3)
	if m.Base != pitch.DefaultBase {
		t.Errorf("NewMapper(-3).Base = %v, want default", m.Base)
	}
	if m := pitch.NewMapper(math.NaN()); m.Base != pitch.DefaultBase {
		t.Errorf("NewMapper(NaN).Base = %v, want default", m.Base)
	}
	n := pitch.NewNote(61, 440)
	want := pitch.Note{Number: 61, Name: "C5#/D5♭", Frequency: 880}
	if n != want {
		t.Errorf("NewNote(61) = %+v, want %+v", n, want)
	}
}
