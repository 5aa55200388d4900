// Package audio streams the synth to the default output device.
package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"go-midisynth/debug"
)

// ErrUnavailable is returned when no audio output could be opened.
var ErrUnavailable = errors.New("audio output unavailable")

const (
	SampleRate   = 44100
	ChannelCount = 2

	// DefaultBufferSize keeps latency around 20ms.
	DefaultBufferSize = 20 * time.Millisecond
)

// newContext is replaced in tests.
var newContext = oto.NewContext

// Device owns the oto context and the one player pulling from the synth.
// oto allows a single context per process, so a Device is opened once.
type Device struct {
	mu        sync.Mutex
	ctx       *oto.Context
	player    *oto.Player
	suspended bool
	closed    bool
}

type options struct {
	bufferSize time.Duration
}

type Option func(*options)

// WithBufferSize sets the device buffer length.
func WithBufferSize(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.bufferSize = d
		}
	}
}

// Open starts playing src, which must produce little-endian float32 stereo
// frames at SampleRate.
func Open(src io.Reader, opts ...Option) (*Device, error) {
	o := options{bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, ready, err := newContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   o.bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	<-ready
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	player := ctx.NewPlayer(src)
	player.Play()
	debug.Log("audio", "output opened: %d Hz, %d channels, buffer %v", SampleRate, ChannelCount, o.bufferSize)
	return &Device{ctx: ctx, player: player}, nil
}

// Suspend pauses the hardware stream. Rendering stops until Resume.
func (d *Device) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.suspended {
		return nil
	}
	if err := d.ctx.Suspend(); err != nil {
		return fmt.Errorf("suspend audio: %w", err)
	}
	d.suspended = true
	debug.Log("audio", "suspended")
	return nil
}

func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || !d.suspended {
		return nil
	}
	if err := d.ctx.Resume(); err != nil {
		return fmt.Errorf("resume audio: %w", err)
	}
	d.suspended = false
	debug.Log("audio", "resumed")
	return nil
}

// Suspended reports whether the stream is paused.
func (d *Device) Suspended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suspended
}

// Close stops the player. The oto context itself lives until the process
// exits.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.player.Close()
}
