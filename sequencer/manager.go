// Package sequencer owns the session: it routes MIDI input to the synth,
// records key presses and replays finished records.
package sequencer

import (
	"context"
	"sync"
	"time"

	"go-midisynth/debug"
	"go-midisynth/pitch"
	"go-midisynth/synth"
)

// Synthesizer is the tone generator the Manager drives.
type Synthesizer interface {
	Play(freq float64, cfg synth.Config) *synth.Tone
	Silence()
}

// Output is the audio device. It is suspended while the session is paused.
type Output interface {
	Suspend() error
	Resume() error
	Close() error
}

// Manager applies commands to the session state one at a time
type Manager struct {
	mu    sync.RWMutex
	state State

	mapper   pitch.Mapper
	records  *Records
	recorder *Recorder
	player   *Player
	events   *EventLog

	replays    map[int]*Playback
	nextReplay int
	speed      float64
	exclusive  bool

	synth Synthesizer
	out   Output
	now   func() time.Time

	commands  chan Command
	stopChan  chan struct{}
	closeOnce sync.Once

	// Notify TUI of updates
	UpdateChan chan struct{}
}

type Option func(*Manager)

func WithOutput(out Output) Option {
	return func(m *Manager) { m.out = out }
}

func WithClock(c Clock) Option {
	return func(m *Manager) { m.player = NewPlayer(c) }
}

// WithNow replaces the wall clock used for record and event timestamps.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithReplay sets the default replay speed and whether a new replay cancels
// the running ones.
func WithReplay(speed float64, exclusive bool) Option {
	return func(m *Manager) {
		if speed > 0 {
			m.speed = speed
		}
		m.exclusive = exclusive
	}
}

// WithSynthConfig sets the initial tone configuration.
func WithSynthConfig(cfg synth.Config) Option {
	return func(m *Manager) { m.state.Synth = cfg.Clamped() }
}

func WithBaseFrequency(hz float64) Option {
	return func(m *Manager) {
		m.mapper = pitch.NewMapper(hz)
		m.state.BaseFrequency = m.mapper.Base
	}
}

func WithEventLogSize(n int) Option {
	return func(m *Manager) { m.events = NewEventLog(n) }
}

// NewManager creates a paused session driving s.
func NewManager(s Synthesizer, opts ...Option) *Manager {
	records := &Records{}
	m := &Manager{
		state:      NewState(),
		mapper:     pitch.NewMapper(pitch.DefaultBase),
		records:    records,
		recorder:   NewRecorder(records),
		player:     NewPlayer(RealClock),
		events:     NewEventLog(DefaultEventLogSize),
		replays:    make(map[int]*Playback),
		speed:      1,
		exclusive:  true,
		synth:      s,
		now:        time.Now,
		commands:   make(chan Command, 256),
		stopChan:   make(chan struct{}),
		UpdateChan: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run applies dispatched commands until ctx is done (blocking - run in
// goroutine). Command errors are logged and the loop keeps going.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		case cmd := <-m.commands:
			if err := m.Apply(cmd); err != nil {
				debug.Log("seq", "%T: %v", cmd, err)
			}
		}
	}
}

// Dispatch queues cmd for Run without blocking. It reports false when the
// queue is full or the manager is closed.
func (m *Manager) Dispatch(cmd Command) bool {
	select {
	case <-m.stopChan:
		return false
	default:
	}
	select {
	case m.commands <- cmd:
		return true
	default:
		debug.Log("seq", "command queue full, dropped %T", cmd)
		return false
	}
}

// post queues cmd, waiting for room. Used by replay goroutines.
func (m *Manager) post(cmd Command) {
	select {
	case m.commands <- cmd:
	case <-m.stopChan:
	}
}

// Apply runs cmd synchronously.
func (m *Manager) Apply(cmd Command) error {
	m.mu.Lock()
	err := cmd.apply(m)
	m.mu.Unlock()
	m.notify()
	return err
}

func (m *Manager) notify() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the session state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Records returns the finished records in insertion order.
func (m *Manager) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records.All()
}

// Events returns the event log, newest first.
func (m *Manager) Events() []Entry {
	return m.events.Entries()
}

// Close pauses the session, stops Run and closes the output.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.mu.Lock()
		pauseErr := m.pause()
		m.mu.Unlock()
		close(m.stopChan)
		if m.out != nil {
			err = m.out.Close()
		}
		if err == nil {
			err = pauseErr
		}
	})
	return err
}

// pause cancels every replay, silences the synth, suspends the output and
// finalizes a recording in progress. Callers hold m.mu.
func (m *Manager) pause() error {
	m.cancelReplays()
	m.synth.Silence()
	if m.recorder.IsRecording() {
		m.stopRecording()
	}
	wasPlaying := m.state.Playing
	m.state.Playing = false
	if wasPlaying {
		debug.Log("seq", "paused")
	}
	if m.out != nil {
		return m.out.Suspend()
	}
	return nil
}

func (m *Manager) stopRecording() {
	rec, added := m.recorder.Stop()
	m.state.Recording = false
	m.state.RecordingLen = 0
	if added {
		debug.Log("seq", "record %d saved: %d notes", rec.ID, rec.Len())
	} else {
		debug.Log("seq", "empty record %d discarded", rec.ID)
	}
}

func (m *Manager) cancelReplays() {
	for _, pb := range m.replays {
		pb.Cancel()
	}
	// PlaybackDone for these ids is ignored
	clear(m.replays)
	m.state.Replays = 0
}

func (m *Manager) logEvent(msg string) {
	m.events.Add(m.now(), msg)
}
