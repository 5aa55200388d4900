package synth_test

import (
	"math"
	"testing"

	"go-midisynth/synth"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFixedEnvelope(t *testing.T) {
	env := synth.DefaultConfig().Envelope()
	if env.Sustain {
		t.Fatalf("default config should build a fixed envelope")
	}
	if !near(env.Attack, 0.2) || !near(env.End, 0.5) || !near(env.Stop, 1) {
		t.Fatalf("envelope = %+v, want attack 0.2, end 0.5, stop 1", env)
	}
	tests := []struct {
		t, want float64
	}{
		{-0.1, 0},
		{0, 0},
		{0.1, 0.5},
		{0.2, 1},
		{0.35, 0.5},
		{0.5, 0},
		{0.9, 0},
	}
	for _, tt := range tests {
		if got := env.Gain(tt.t); !near(got, tt.want) {
			t.Errorf("Gain(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if env.Expired(0.999) {
		t.Errorf("tone expired before its sweep length")
	}
	if !env.Expired(1) {
		t.Errorf("tone did not expire at its sweep length")
	}
}

func TestOverlappingEnvelopeIsClamped(t *testing.T) {
	cfg := synth.Config{SweepLength: 1, Attack: 0.8, Release: 0.5}
	env := cfg.Envelope()
	if !near(env.End, 0.8) {
		t.Fatalf("End = %v, want clamp to attack peak 0.8", env.End)
	}
	for ts := 0.0; ts <= 1; ts += 0.01 {
		g := env.Gain(ts)
		if g < 0 || g > 1 || math.IsNaN(g) {
			t.Fatalf("Gain(%v) = %v out of [0, 1]", ts, g)
		}
	}
	if g := env.Gain(0.85); g != 0 {
		t.Errorf("Gain after peak = %v, want 0", g)
	}
}

func TestZeroAttack(t *testing.T) {
	env := synth.Config{SweepLength: 1, Attack: 0, Release: 0}.Envelope()
	if g := env.Gain(0); g != 1 {
		t.Errorf("Gain(0) = %v, want 1 with no attack", g)
	}
	if g := env.Gain(0.5); !near(g, 0.5) {
		t.Errorf("Gain(0.5) = %v, want 0.5", g)
	}
}

func TestSustainedEnvelope(t *testing.T) {
	cfg := synth.DefaultConfig()
	cfg.Wave = synth.WaveCustom
	if !cfg.Sustained() {
		t.Fatalf("custom wave with auto policy should sustain")
	}
	env := cfg.Envelope()
	if g := env.Gain(100); g != 1 {
		t.Errorf("sustained Gain(100) = %v, want 1", g)
	}
	if env.Expired(100) {
		t.Errorf("sustained tone should never expire on its own")
	}
	cfg.Policy = synth.PolicyFixed
	if cfg.Sustained() {
		t.Errorf("fixed policy should not sustain a custom wave")
	}
	cfg.Wave = synth.WaveSquare
	cfg.Policy = synth.PolicySustained
	if !cfg.Sustained() {
		t.Errorf("sustained policy should sustain a named wave")
	}
}

func TestClamped(t *testing.T) {
	tests := []struct {
		name string
		in   synth.Config
		want synth.Config
	}{
		{"negative sweep", synth.Config{SweepLength: -1}, synth.Config{SweepLength: synth.MinSweepLength}},
		{"nan sweep", synth.Config{SweepLength: math.NaN(), Attack: 0.1}, synth.Config{SweepLength: 1, Attack: 0.1}},
		{"negative attack", synth.Config{SweepLength: 1, Attack: -2, Release: math.NaN()}, synth.Config{SweepLength: 1}},
		{"long attack", synth.Config{SweepLength: 1, Attack: 3, Release: 4}, synth.Config{SweepLength: 1, Attack: 1, Release: 1}},
		{"bad enums", synth.Config{Wave: 42, Policy: -1, SweepLength: 1}, synth.Config{SweepLength: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamped(); got != tt.want {
				t.Errorf("Clamped() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []synth.Policy{synth.PolicyAuto, synth.PolicyFixed, synth.PolicySustained} {
		got, err := synth.ParsePolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := synth.ParsePolicy("forever"); err == nil {
		t.Errorf("ParsePolicy accepted an unknown policy")
	}
}
