package synth

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Levels returns the peak absolute value and the RMS of buf.
func Levels(buf []float32) (peak, rms float32) {
	if len(buf) == 0 {
		return 0, 0
	}
	peak = vek32.Max(vek32.Abs(buf))
	rms = float32(math.Sqrt(float64(vek32.Dot(buf, buf)) / float64(len(buf))))
	return peak, rms
}

// Meter smooths Levels over successive scope windows. The peak falls off
// linearly, the RMS decays exponentially.
type Meter struct {
	Peak    float32
	RMS     float32
	FallOff float32
	Decay   float32
}

func NewMeter() *Meter {
	return &Meter{FallOff: 0.05, Decay: 0.3}
}

func (m *Meter) Update(buf []float32) {
	peak, rms := Levels(buf)
	m.Peak -= m.FallOff
	if m.Peak < peak {
		m.Peak = peak
	}
	if m.Peak < 0 {
		m.Peak = 0
	}
	m.RMS += (rms - m.RMS) * m.Decay
	if math.IsNaN(float64(m.RMS)) {
		m.RMS = 0
	}
}

func (m *Meter) Reset() {
	m.Peak, m.RMS = 0, 0
}

// Decibels converts a linear level to dBFS, floored at -rangeDb.
func Decibels(level, rangeDb float32) float32 {
	if level <= 0 {
		return -rangeDb
	}
	db := float32(20 * math.Log10(float64(level)))
	if db < -rangeDb {
		return -rangeDb
	}
	return db
}
