package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"go-midisynth/pitch"
	"go-midisynth/synth"
)

// SynthConfig is the initial tone configuration
type SynthConfig struct {
	BaseFrequency float64        `json:"baseFrequency" yaml:"baseFrequency"`
	Waveform      synth.WaveType `json:"waveform" yaml:"waveform"`
	Policy        synth.Policy   `json:"policy" yaml:"policy"`
	SweepLength   float64        `json:"sweepLength" yaml:"sweepLength"`
	Attack        float64        `json:"attack" yaml:"attack"`
	Release       float64        `json:"release" yaml:"release"`
	Volume        float64        `json:"volume" yaml:"volume"`
	MaxVoices     int            `json:"maxVoices,omitempty" yaml:"maxVoices,omitempty"`
}

// Tone returns the per-tone part of the configuration.
func (s SynthConfig) Tone() synth.Config {
	return synth.Config{
		Wave:        s.Waveform,
		Policy:      s.Policy,
		SweepLength: s.SweepLength,
		Attack:      s.Attack,
		Release:     s.Release,
	}
}

// MIDIConfig selects which inputs are opened
type MIDIConfig struct {
	Preferred      []string `json:"preferred,omitempty" yaml:"preferred,omitempty"`
	Excluded       []string `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	PollIntervalMs int      `json:"pollIntervalMs,omitempty" yaml:"pollIntervalMs,omitempty"`
}

// PlaybackConfig controls record replay
type PlaybackConfig struct {
	Speed     float64 `json:"speed" yaml:"speed"`
	Exclusive bool    `json:"exclusive" yaml:"exclusive"`
}

// AudioConfig controls the output device
type AudioConfig struct {
	BufferMs int `json:"bufferMs,omitempty" yaml:"bufferMs,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty" yaml:"palette,omitempty"` // .gpl file, empty for the built-in palette
	FPS     int    `json:"fps,omitempty" yaml:"fps,omitempty"`
}

// DebugConfig enables the debug log
type DebugConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Synth    SynthConfig    `json:"synth" yaml:"synth"`
	MIDI     MIDIConfig     `json:"midi" yaml:"midi"`
	Playback PlaybackConfig `json:"playback" yaml:"playback"`
	Audio    AudioConfig    `json:"audio" yaml:"audio"`
	UI       UIConfig       `json:"ui" yaml:"ui"`
	Debug    DebugConfig    `json:"debug" yaml:"debug"`
}

const (
	DefaultPollIntervalMs = 1000
	DefaultBufferMs       = 20
	DefaultFPS            = 30
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	tone := synth.DefaultConfig()
	return &Config{
		Synth: SynthConfig{
			BaseFrequency: pitch.DefaultBase,
			Waveform:      tone.Wave,
			Policy:        tone.Policy,
			SweepLength:   tone.SweepLength,
			Attack:        tone.Attack,
			Release:       tone.Release,
			Volume:        synth.DefaultVolume,
			MaxVoices:     synth.DefaultMaxVoices,
		},
		MIDI: MIDIConfig{
			Excluded:       []string{"midi through", "rtmidi"},
			PollIntervalMs: DefaultPollIntervalMs,
		},
		Playback: PlaybackConfig{
			Speed:     1,
			Exclusive: true,
		},
		Audio: AudioConfig{BufferMs: DefaultBufferMs},
		UI:    UIConfig{FPS: DefaultFPS},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-midisynth"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DebugLogPath returns the configured debug log path, defaulting to
// debug.log in the config dir.
func (c *Config) DebugLogPath() (string, error) {
	if c.Debug.Path != "" {
		return c.Debug.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "debug.log"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadFile reads a JSON or YAML config. Missing fields keep their defaults
// and the result is clamped.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if errJSON := json.Unmarshal(data, cfg); errJSON != nil {
		cfg = DefaultConfig()
		if errYaml := yaml.Unmarshal(data, cfg); errYaml != nil {
			return nil, fmt.Errorf("config %s could not be parsed as .json (%v) or .yml (%v)", path, errJSON, errYaml)
		}
	}
	cfg.Clamp()
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config as indented JSON, creating the directory.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clamp repairs out-of-range values in place.
func (c *Config) Clamp() {
	def := DefaultConfig()

	s := &c.Synth
	if !(s.BaseFrequency > 0) || math.IsInf(s.BaseFrequency, 0) {
		s.BaseFrequency = def.Synth.BaseFrequency
	}
	tone := s.Tone().Clamped()
	s.Waveform, s.Policy = tone.Wave, tone.Policy
	s.SweepLength, s.Attack, s.Release = tone.SweepLength, tone.Attack, tone.Release
	if math.IsNaN(s.Volume) {
		s.Volume = def.Synth.Volume
	}
	s.Volume = math.Max(0, math.Min(1, s.Volume))
	if s.MaxVoices <= 0 {
		s.MaxVoices = def.Synth.MaxVoices
	}

	if c.MIDI.PollIntervalMs < 100 {
		c.MIDI.PollIntervalMs = def.MIDI.PollIntervalMs
	}
	if !(c.Playback.Speed > 0) || math.IsInf(c.Playback.Speed, 0) {
		c.Playback.Speed = def.Playback.Speed
	}
	if c.Audio.BufferMs <= 0 {
		c.Audio.BufferMs = def.Audio.BufferMs
	}
	if c.UI.FPS <= 0 || c.UI.FPS > 120 {
		c.UI.FPS = def.UI.FPS
	}
}
