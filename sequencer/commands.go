package sequencer

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"go-midisynth/debug"
	"go-midisynth/midi"
	"go-midisynth/pitch"
	"go-midisynth/synth"
)

var (
	ErrNotPlaying   = errors.New("not playing")
	ErrInvalidValue = errors.New("invalid value")
)

// Command is one state transition. Commands are applied one at a time by the
// Manager.
type Command interface {
	apply(m *Manager) error
}

// MIDIMessage routes one incoming MIDI message.
type MIDIMessage struct {
	Message midi.Message
}

func (c MIDIMessage) apply(m *Manager) error {
	msg := c.Message
	kind := msg.Kind()
	note, hasNote := msg.Note()
	velocity, _ := msg.Velocity()
	debug.Log("midi", "message from %q at %s [%d bytes]: %s kind=%s note=%d velocity=%d",
		msg.Port, msg.Timestamp.Format("15:04:05.000"), len(msg.Data), msg.Hex(), kind, note, velocity)

	if kind != midi.KindKeyPress || !hasNote {
		return nil
	}
	n := m.mapper.Note(note)
	debug.Log("midi", "key press: name=%s frequency=%g", n.Name, n.Frequency)
	m.state.LastNote = n
	if m.state.Playing {
		m.synth.Play(n.Frequency, m.state.Synth)
	}
	if m.recorder.Append(n) {
		m.state.RecordingLen++
	}
	m.logEvent(fmt.Sprintf("Key press: %s, Frequency: %s", n.Name, strconv.FormatFloat(n.Frequency, 'f', -1, 64)))
	return nil
}

// TogglePlay starts or pauses the session.
type TogglePlay struct{}

func (TogglePlay) apply(m *Manager) error {
	if m.state.Playing {
		return m.pause()
	}
	if m.out != nil {
		if err := m.out.Resume(); err != nil {
			return err
		}
	}
	m.state.Playing = true
	debug.Log("seq", "playing")
	return nil
}

// ToggleRecord starts or stops recording. Recording only starts while
// playing.
type ToggleRecord struct{}

func (ToggleRecord) apply(m *Manager) error {
	if m.recorder.IsRecording() {
		m.stopRecording()
		return nil
	}
	if !m.state.Playing {
		return fmt.Errorf("start recording: %w", ErrNotPlaying)
	}
	m.recorder.Start(m.now())
	m.state.Recording = true
	m.state.RecordingLen = 0
	debug.Log("seq", "recording started")
	return nil
}

// SetBaseFrequency changes the frequency of the reference note. Invalid
// values keep the previous frequency.
type SetBaseFrequency struct{ Hz float64 }

func (c SetBaseFrequency) apply(m *Manager) error {
	if !(c.Hz > 0) || math.IsInf(c.Hz, 0) {
		return fmt.Errorf("%w: base frequency %v", ErrInvalidValue, c.Hz)
	}
	m.state.BaseFrequency = c.Hz
	m.mapper = pitch.NewMapper(c.Hz)
	return nil
}

// SetSweepLength sets the fixed tone length in seconds.
type SetSweepLength struct{ Seconds float64 }

func (c SetSweepLength) apply(m *Manager) error {
	v, err := seconds("sweep length", c.Seconds)
	if err != nil {
		return err
	}
	m.state.Synth.SweepLength = math.Max(v, synth.MinSweepLength)
	return nil
}

type SetAttack struct{ Seconds float64 }

func (c SetAttack) apply(m *Manager) error {
	v, err := seconds("attack", c.Seconds)
	if err != nil {
		return err
	}
	m.state.Synth.Attack = v
	return nil
}

type SetRelease struct{ Seconds float64 }

func (c SetRelease) apply(m *Manager) error {
	v, err := seconds("release", c.Seconds)
	if err != nil {
		return err
	}
	m.state.Synth.Release = v
	return nil
}

// seconds rejects non-finite values and clamps negatives to zero. The
// relation to the sweep length is resolved per tone.
func seconds(name string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s %v", ErrInvalidValue, name, v)
	}
	return math.Max(v, 0), nil
}

type SetWaveform struct{ Wave synth.WaveType }

func (c SetWaveform) apply(m *Manager) error {
	if _, err := c.Wave.MarshalText(); err != nil {
		return err
	}
	m.state.Synth.Wave = c.Wave
	return nil
}

type SetPolicy struct{ Policy synth.Policy }

func (c SetPolicy) apply(m *Manager) error {
	if _, err := c.Policy.MarshalText(); err != nil {
		return err
	}
	m.state.Synth.Policy = c.Policy
	return nil
}

// PlayRecord replays a finished record. Speed 0 uses the configured speed.
type PlayRecord struct {
	ID    int
	Speed float64
}

func (c PlayRecord) apply(m *Manager) error {
	if !m.state.Playing {
		return fmt.Errorf("replay %d: %w", c.ID, ErrNotPlaying)
	}
	rec, err := m.records.Find(c.ID)
	if err != nil {
		return err
	}
	speed := c.Speed
	if speed == 0 {
		speed = m.speed
	}
	if m.exclusive {
		m.cancelReplays()
	}
	m.nextReplay++
	id := m.nextReplay
	pb := m.player.Play(rec.Sequence, speed, func(n pitch.Note) {
		m.post(PlaybackNote{Replay: id, Note: n})
	})
	m.replays[id] = pb
	m.state.Replays = len(m.replays)
	go func() {
		<-pb.Done()
		m.post(PlaybackDone{Replay: id})
	}()
	debug.Log("seq", "replay %d: record %d, %d notes every %v", id, rec.ID, rec.Len(), pb.Interval)
	return nil
}

// StopReplay cancels every running replay.
type StopReplay struct{}

func (StopReplay) apply(m *Manager) error {
	m.cancelReplays()
	return nil
}

// PlaybackNote is one scheduled note of a replay. Replayed notes use the
// recorded frequency and are never recorded again.
type PlaybackNote struct {
	Replay int
	Note   pitch.Note
}

func (c PlaybackNote) apply(m *Manager) error {
	if _, ok := m.replays[c.Replay]; !ok || !m.state.Playing {
		return nil
	}
	m.synth.Play(c.Note.Frequency, m.state.Synth)
	return nil
}

// PlaybackDone retires a replay once its goroutine has ended.
type PlaybackDone struct{ Replay int }

func (c PlaybackDone) apply(m *Manager) error {
	delete(m.replays, c.Replay)
	m.state.Replays = len(m.replays)
	return nil
}

// DeviceChanged records a MIDI input connecting or disconnecting.
type DeviceChanged struct{ Event midi.DeviceEvent }

func (c DeviceChanged) apply(m *Manager) error {
	switch c.Event.Type {
	case midi.DeviceConnected:
		m.state.Inputs++
	case midi.DeviceDisconnected:
		if m.state.Inputs > 0 {
			m.state.Inputs--
		}
	}
	m.logEvent(c.Event.String())
	return nil
}
