package synth

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownWaveType  = errors.New("unknown wave type")
	ErrInvalidHarmonics = errors.New("harmonic tables must have equal length of at least 2")
)

// WaveType selects the oscillator waveform.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
	WaveCustom // periodic wave built from the harmonic table
)

var waveNames = []string{"sine", "square", "sawtooth", "triangle", "custom"}

// WaveTypes lists every selectable wave type in display order.
func WaveTypes() []WaveType {
	return []WaveType{WaveSine, WaveSquare, WaveSawtooth, WaveTriangle, WaveCustom}
}

func (w WaveType) String() string {
	if w < 0 || int(w) >= len(waveNames) {
		return fmt.Sprintf("WaveType(%d)", int(w))
	}
	return waveNames[w]
}

// Next cycles to the following wave type.
func (w WaveType) Next() WaveType {
	return WaveType((int(w) + 1) % len(waveNames))
}

// ParseWaveType parses a case-insensitive wave type name.
func ParseWaveType(s string) (WaveType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range waveNames {
		if s == name {
			return WaveType(i), nil
		}
	}
	return WaveSine, fmt.Errorf("%w: %q", ErrUnknownWaveType, s)
}

func (w WaveType) MarshalText() ([]byte, error) {
	if w < 0 || int(w) >= len(waveNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownWaveType, int(w))
	}
	return []byte(waveNames[w]), nil
}

func (w *WaveType) UnmarshalText(b []byte) error {
	v, err := ParseWaveType(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Waveform produces one cycle of a periodic signal. phase is in [0, 1).
type Waveform interface {
	Sample(phase float64) float64
}

type basicWave WaveType

func (b basicWave) Sample(phase float64) float64 {
	switch WaveType(b) {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSawtooth:
		return 2*phase - 1
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// BasicWaveform returns the analytic waveform for a named wave type. Custom
// has no analytic form and yields a sine.
func BasicWaveform(w WaveType) Waveform {
	if w == WaveCustom {
		return basicWave(WaveSine)
	}
	return basicWave(w)
}

const periodicTableSize = 4096

// PeriodicWave is a waveform defined by Fourier coefficients, rendered once
// into a wavetable normalized to a peak of 1.
type PeriodicWave struct {
	table []float64
}

// DefaultHarmonics is the harmonic table used for the custom wave type. Index
// k holds the coefficients of the k-th harmonic; index 0 (DC) is ignored.
var DefaultHarmonics = struct {
	Real []float64
	Imag []float64
}{
	Real: []float64{0, 0, 0.12, 0, 0.08, 0, 0.04, 0, 0.02},
	Imag: []float64{0, 1, 0.55, 0.32, 0.2, 0.12, 0.07, 0.04, 0.02},
}

// NewPeriodicWave builds a wave from cosine (real) and sine (imag) terms.
func NewPeriodicWave(real, imag []float64) (*PeriodicWave, error) {
	if len(real) != len(imag) || len(real) < 2 {
		return nil, fmt.Errorf("%w: got %d and %d", ErrInvalidHarmonics, len(real), len(imag))
	}
	table := make([]float64, periodicTableSize)
	peak := 0.0
	for i := range table {
		x := 2 * math.Pi * float64(i) / periodicTableSize
		v := 0.0
		for k := 1; k < len(real); k++ {
			v += real[k]*math.Cos(float64(k)*x) + imag[k]*math.Sin(float64(k)*x)
		}
		table[i] = v
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		for i := range table {
			table[i] /= peak
		}
	}
	return &PeriodicWave{table: table}, nil
}

// MustPeriodicWave is like NewPeriodicWave but panics on invalid tables.
func MustPeriodicWave(real, imag []float64) *PeriodicWave {
	w, err := NewPeriodicWave(real, imag)
	if err != nil {
		panic(err)
	}
	return w
}

func (p *PeriodicWave) Sample(phase float64) float64 {
	pos := phase * periodicTableSize
	i := int(pos)
	frac := pos - float64(i)
	a := p.table[i%periodicTableSize]
	b := p.table[(i+1)%periodicTableSize]
	return a + (b-a)*frac
}
