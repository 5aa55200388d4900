package synth

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownPolicy = errors.New("unknown tone policy")

// Policy decides how long a tone lives.
type Policy int

const (
	// PolicyAuto sustains custom waves and uses fixed-duration tones for
	// every named wave.
	PolicyAuto Policy = iota
	// PolicyFixed stops every tone after the sweep length.
	PolicyFixed
	// PolicySustained holds every tone until it is cancelled or retriggered.
	PolicySustained
)

var policyNames = []string{"auto", "fixed", "sustained"}

func (p Policy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return fmt.Sprintf("Policy(%d)", int(p))
	}
	return policyNames[p]
}

func (p Policy) Next() Policy { return Policy((int(p) + 1) % len(policyNames)) }

func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range policyNames {
		if s == name {
			return Policy(i), nil
		}
	}
	return PolicyAuto, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

func (p Policy) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(policyNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(p))
	}
	return []byte(policyNames[p]), nil
}

func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Defaults for a fresh session.
const (
	DefaultSweepLength = 1.0
	DefaultAttack      = 0.2
	DefaultRelease     = 0.5

	// MinSweepLength is the shortest tone that is ever scheduled.
	MinSweepLength = 0.01
)

// Config is the synthesis configuration for one tone. Durations are in
// seconds. A Config is passed by value and never shared.
type Config struct {
	Wave        WaveType `json:"waveform" yaml:"waveform"`
	Policy      Policy   `json:"policy" yaml:"policy"`
	SweepLength float64  `json:"sweepLength" yaml:"sweepLength"`
	Attack      float64  `json:"attack" yaml:"attack"`
	Release     float64  `json:"release" yaml:"release"`
}

func DefaultConfig() Config {
	return Config{
		Wave:        WaveSine,
		Policy:      PolicyAuto,
		SweepLength: DefaultSweepLength,
		Attack:      DefaultAttack,
		Release:     DefaultRelease,
	}
}

// Sustained reports whether tones built from c wait for a cancel.
func (c Config) Sustained() bool {
	return c.Policy == PolicySustained || (c.Policy == PolicyAuto && c.Wave == WaveCustom)
}

// Clamped returns c with every value moved into a range that schedules
// cleanly: the sweep is at least MinSweepLength and attack and release lie in
// [0, sweep]. Non-finite sweeps fall back to the default.
func (c Config) Clamped() Config {
	switch {
	case math.IsNaN(c.SweepLength) || math.IsInf(c.SweepLength, 0):
		c.SweepLength = DefaultSweepLength
	case c.SweepLength < MinSweepLength:
		c.SweepLength = MinSweepLength
	}
	c.Attack = clampSpan(c.Attack, c.SweepLength)
	c.Release = clampSpan(c.Release, c.SweepLength)
	if c.Wave < 0 || int(c.Wave) >= len(waveNames) {
		c.Wave = WaveSine
	}
	if c.Policy < 0 || int(c.Policy) >= len(policyNames) {
		c.Policy = PolicyAuto
	}
	return c
}

func clampSpan(v, max float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// Envelope is an amplitude curve in seconds relative to the tone start.
//
// A fixed envelope rises linearly to 1 at Attack, falls linearly to 0 at End
// and the tone stops at Stop. A sustained envelope rises to 1 and stays there.
// Release is the fade length applied when a tone is cancelled.
type Envelope struct {
	Attack  float64
	End     float64
	Stop    float64
	Release float64
	Sustain bool
}

// Envelope derives the amplitude curve from c. When attack and release
// overlap the falling ramp is clamped to end at the attack peak.
func (c Config) Envelope() Envelope {
	c = c.Clamped()
	e := Envelope{Attack: c.Attack, Release: c.Release, Sustain: c.Sustained()}
	if e.Sustain {
		return e
	}
	e.Stop = c.SweepLength
	e.End = c.SweepLength - c.Release
	if e.End < e.Attack {
		e.End = e.Attack
	}
	return e
}

// Gain returns the scheduled gain at t seconds, ignoring cancellation.
func (e Envelope) Gain(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t < e.Attack:
		return t / e.Attack
	case e.Sustain:
		return 1
	case t < e.End:
		return 1 - (t-e.Attack)/(e.End-e.Attack)
	}
	return 0
}

// Expired reports whether a fixed tone has reached its stop time.
func (e Envelope) Expired(t float64) bool {
	return !e.Sustain && t >= e.Stop
}
