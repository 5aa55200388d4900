// Package synth renders enveloped tones into a float32 stereo stream.
package synth

import (
	"encoding/binary"
	"math"
	"sync"
	"time"
)

const (
	SampleRate   = 44100
	ChannelCount = 2

	// bytes per interleaved float32 frame
	frameBytes = ChannelCount * 4

	DefaultMaxVoices = 16
	DefaultVolume    = 0.5
)

type voice struct {
	id    uint64
	freq  float64
	wave  Waveform
	env   Envelope
	phase float64
	age   int // frames rendered since the tone started

	released bool
	relAt    float64 // seconds since start when the release began
	relFrom  float64 // gain held at release time
	done     bool
}

func (v *voice) time() float64 { return float64(v.age) / SampleRate }

// gain returns the current gain and whether the voice has ended.
func (v *voice) gain(t float64) (float64, bool) {
	if v.env.Expired(t) {
		return 0, true
	}
	if !v.released {
		return v.env.Gain(t), false
	}
	dt := t - v.relAt
	if dt >= v.env.Release {
		return 0, true
	}
	return v.relFrom * (1 - dt/v.env.Release), false
}

// release cancels the scheduled ramps, holds the current gain and fades it
// out over the release time.
func (v *voice) release() {
	if v.released || v.done {
		return
	}
	t := v.time()
	g, done := v.gain(t)
	if done {
		v.done = true
		return
	}
	v.released = true
	v.relAt = t
	v.relFrom = g
}

// Synth is a small voice mixer. It is safe for concurrent use: Play and
// Silence are called from the control goroutine while the audio device pulls
// samples through Read.
type Synth struct {
	mu        sync.Mutex
	voices    []*voice
	maxVoices int
	volume    float64
	custom    Waveform
	frame     int64 // audio clock in frames
	nextID    uint64

	scope *Scope
	tmp   []float32
	mono  []float32
}

type Option func(*Synth)

func WithMaxVoices(n int) Option {
	return func(s *Synth) {
		if n > 0 {
			s.maxVoices = n
		}
	}
}

// WithVolume sets the master volume, clamped to [0, 1].
func WithVolume(v float64) Option {
	return func(s *Synth) {
		if math.IsNaN(v) {
			return
		}
		s.volume = math.Max(0, math.Min(1, v))
	}
}

func WithScopeSize(n int) Option {
	return func(s *Synth) {
		if n > 0 {
			s.scope = NewScope(n)
		}
	}
}

func New(opts ...Option) *Synth {
	s := &Synth{
		maxVoices: DefaultMaxVoices,
		volume:    DefaultVolume,
		custom:    MustPeriodicWave(DefaultHarmonics.Real, DefaultHarmonics.Imag),
		scope:     NewScope(DefaultScopeSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tone is a handle to one playing voice.
type Tone struct {
	id        uint64
	s         *Synth
	Frequency float64
	Sustained bool
}

// Cancel fades the tone out over its release time. Cancelling a finished
// tone does nothing.
func (t *Tone) Cancel() {
	if t == nil {
		return
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if v := t.s.find(t.id); v != nil {
		v.release()
	}
}

// Active reports whether the tone still sounds.
func (t *Tone) Active() bool {
	if t == nil {
		return false
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.find(t.id) != nil
}

func (s *Synth) find(id uint64) *voice {
	for _, v := range s.voices {
		if v.id == id && !v.done {
			return v
		}
	}
	return nil
}

func (s *Synth) waveform(w WaveType) Waveform {
	if w == WaveCustom {
		return s.custom
	}
	return BasicWaveform(w)
}

// Play starts a tone at freq. The configuration is clamped before use. A
// sustained tone cancels the pending ramps of every other sustained voice so
// that rapid retriggering never stacks schedules.
func (s *Synth) Play(freq float64, cfg Config) *Tone {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return nil
	}
	cfg = cfg.Clamped()
	env := cfg.Envelope()

	s.mu.Lock()
	defer s.mu.Unlock()
	if env.Sustain {
		for _, v := range s.voices {
			if v.env.Sustain {
				v.release()
			}
		}
	}
	s.nextID++
	v := &voice{id: s.nextID, freq: freq, wave: s.waveform(cfg.Wave), env: env}
	s.voices = append(s.voices, v)
	s.compact()
	if live := s.liveCount(); live > s.maxVoices {
		// steal the oldest voices
		drop := live - s.maxVoices
		for _, old := range s.voices {
			if drop == 0 {
				break
			}
			if !old.done {
				old.done = true
				drop--
			}
		}
		s.compact()
	}
	return &Tone{id: v.id, s: s, Frequency: freq, Sustained: env.Sustain}
}

// Silence drops every voice immediately.
func (s *Synth) Silence() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices = s.voices[:0]
}

// Active returns the number of sounding voices.
func (s *Synth) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveCount()
}

func (s *Synth) liveCount() int {
	n := 0
	for _, v := range s.voices {
		if !v.done {
			n++
		}
	}
	return n
}

func (s *Synth) compact() {
	live := s.voices[:0]
	for _, v := range s.voices {
		if !v.done {
			live = append(live, v)
		}
	}
	for i := len(live); i < len(s.voices); i++ {
		s.voices[i] = nil
	}
	s.voices = live
}

// Now returns the audio clock.
func (s *Synth) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.frame) * time.Second / SampleRate
}

func (s *Synth) Scope() *Scope { return s.scope }

// Render fills buf with interleaved stereo frames and advances the clock.
// Render and Read belong to the audio goroutine and must not be called
// concurrently with each other.
func (s *Synth) Render(buf []float32) {
	frames := len(buf) / ChannelCount
	if cap(s.mono) < frames {
		s.mono = make([]float32, frames)
	}
	mono := s.mono[:frames]

	s.mu.Lock()
	for i := 0; i < frames; i++ {
		var sample float64
		for _, v := range s.voices {
			if v.done {
				continue
			}
			g, done := v.gain(v.time())
			if done {
				v.done = true
				continue
			}
			sample += v.wave.Sample(v.phase) * g
			v.phase += v.freq / SampleRate
			if v.phase >= 1 {
				v.phase -= math.Floor(v.phase)
			}
			v.age++
		}
		sample *= s.volume
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		mono[i] = float32(sample)
		for c := 0; c < ChannelCount; c++ {
			buf[i*ChannelCount+c] = float32(sample)
		}
	}
	s.compact()
	s.frame += int64(frames)
	s.mu.Unlock()

	s.scope.Write(mono)
}

// Read implements io.Reader over little-endian float32 stereo frames, the
// format the audio device is opened with.
func (s *Synth) Read(p []byte) (int, error) {
	frames := len(p) / frameBytes
	n := frames * ChannelCount
	if cap(s.tmp) < n {
		s.tmp = make([]float32, n)
	}
	buf := s.tmp[:n]
	s.Render(buf)
	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	// pad a trailing partial frame with silence
	clear(p[frames*frameBytes:])
	return len(p), nil
}
