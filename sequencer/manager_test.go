package sequencer_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go-midisynth/midi"
	"go-midisynth/sequencer"
	"go-midisynth/synth"
)

var testNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)

type session struct {
	m     *sequencer.Manager
	synth *fakeSynth
	out   *fakeOutput
	clock *fakeClock
}

func newSession(opts ...sequencer.Option) *session {
	s := &session{synth: &fakeSynth{}, out: &fakeOutput{}, clock: newFakeClock()}
	opts = append([]sequencer.Option{
		sequencer.WithOutput(s.out),
		sequencer.WithClock(s.clock),
		sequencer.WithNow(func() time.Time { return testNow }),
	}, opts...)
	s.m = sequencer.NewManager(s.synth, opts...)
	return s
}

func (s *session) apply(t *testing.T, cmds ...sequencer.Command) {
	t.Helper()
	for _, cmd := range cmds {
		if err := s.m.Apply(cmd); err != nil {
			t.Fatalf("Apply(%T): %v", cmd, err)
		}
	}
}

func key(data ...byte) sequencer.MIDIMessage {
	return sequencer.MIDIMessage{Message: midi.Message{Data: data, Timestamp: testNow, Port: "test"}}
}

func TestKeyPressWhilePaused(t *testing.T) {
	s := newSession()
	s.apply(t, key(144, 49, 100))
	if got := s.synth.Played(); len(got) != 0 {
		t.Errorf("synth played %v while paused", got)
	}
	events := s.m.Events()
	if len(events) != 1 || events[0].Message != "Key press: C4#/D4♭, Frequency: 440" {
		t.Fatalf("events = %+v", events)
	}
	if got := s.m.Snapshot().LastNote.Number; got != 49 {
		t.Errorf("LastNote = %d, want 49", got)
	}
}

func TestKeyPressWhilePlaying(t *testing.T) {
	s := newSession()
	s.apply(t, sequencer.TogglePlay{}, key(144, 61, 1), key(144, 61, 127))
	if _, resumes, _ := s.out.counts(); resumes != 1 {
		t.Errorf("output resumed %d times, want 1", resumes)
	}
	if got := s.synth.Played(); !reflect.DeepEqual(got, []float64{880, 880}) {
		t.Errorf("played %v, want two 880Hz tones regardless of velocity", got)
	}
	if cfg := s.synth.configs[0]; cfg != synth.DefaultConfig() {
		t.Errorf("tone config = %+v, want defaults", cfg)
	}
}

func TestIgnoredMessages(t *testing.T) {
	s := newSession()
	s.apply(t, sequencer.TogglePlay{}, sequencer.ToggleRecord{})
	for _, cmd := range []sequencer.Command{
		key(144),
		key(),
		key(128, 49, 0),
		key(153, 36, 100),
		key(176, 1, 64),
		key(145, 49, 100),
	} {
		s.apply(t, cmd)
	}
	if got := s.synth.Played(); len(got) != 0 {
		t.Errorf("synth played %v", got)
	}
	if n := s.m.Snapshot().RecordingLen; n != 0 {
		t.Errorf("recorded %d notes", n)
	}
	if n := len(s.m.Events()); n != 0 {
		t.Errorf("logged %d events", n)
	}
}

func TestRecordingSession(t *testing.T) {
	s := newSession()
	if err := s.m.Apply(sequencer.ToggleRecord{}); !errors.Is(err, sequencer.ErrNotPlaying) {
		t.Fatalf("ToggleRecord while paused error = %v, want ErrNotPlaying", err)
	}
	s.apply(t, sequencer.TogglePlay{}, sequencer.ToggleRecord{}, key(144, 49, 90), key(144, 61, 90))
	st := s.m.Snapshot()
	if !st.Recording || st.RecordingLen != 2 {
		t.Fatalf("state = %+v, want recording 2 notes", st)
	}
	s.apply(t, sequencer.ToggleRecord{})

	// an empty recording is discarded
	s.apply(t, sequencer.ToggleRecord{}, sequencer.ToggleRecord{})

	s.apply(t, sequencer.ToggleRecord{}, key(144, 50, 90), sequencer.ToggleRecord{})

	recs := s.m.Records()
	if len(recs) != 2 {
		t.Fatalf("records = %+v, want 2", recs)
	}
	first := recs[0]
	if first.ID != 1 || first.Name != "New Recording" || !first.Timestamp.Equal(testNow) {
		t.Errorf("first record = %+v", first)
	}
	if first.Len() != 2 || first.Sequence[0].Frequency != 440 || first.Sequence[1].Name != "C5#/D5♭" {
		t.Errorf("first sequence = %+v", first.Sequence)
	}
	if first.Duration() != 500*time.Millisecond {
		t.Errorf("duration = %v", first.Duration())
	}
	if recs[1].ID != 2 {
		t.Errorf("second record id = %d, want 2", recs[1].ID)
	}
}

func TestPauseStopsRecording(t *testing.T) {
	s := newSession()
	s.apply(t, sequencer.TogglePlay{}, sequencer.ToggleRecord{}, key(144, 49, 90), sequencer.TogglePlay{})
	st := s.m.Snapshot()
	if st.Playing || st.Recording {
		t.Fatalf("state after pause = %+v", st)
	}
	if len(s.m.Records()) != 1 {
		t.Errorf("pause did not finalize the recording")
	}
	if s.synth.silenced != 1 {
		t.Errorf("synth silenced %d times, want 1", s.synth.silenced)
	}
	if suspends, _, _ := s.out.counts(); suspends != 1 {
		t.Errorf("output suspended %d times, want 1", suspends)
	}
}

func TestSettings(t *testing.T) {
	s := newSession()
	for _, cmd := range []sequencer.Command{
		sequencer.SetBaseFrequency{Hz: 0},
		sequencer.SetBaseFrequency{Hz: -5},
		sequencer.SetAttack{Seconds: nan()},
	} {
		if err := s.m.Apply(cmd); !errors.Is(err, sequencer.ErrInvalidValue) {
			t.Errorf("Apply(%+v) error = %v, want ErrInvalidValue", cmd, err)
		}
	}
	if err := s.m.Apply(sequencer.SetWaveform{Wave: 99}); !errors.Is(err, synth.ErrUnknownWaveType) {
		t.Errorf("SetWaveform(99) error = %v", err)
	}
	s.apply(t,
		sequencer.SetBaseFrequency{Hz: 432},
		sequencer.SetSweepLength{Seconds: 0},
		sequencer.SetAttack{Seconds: -1},
		sequencer.SetRelease{Seconds: 0.3},
		sequencer.SetWaveform{Wave: synth.WaveCustom},
		sequencer.SetPolicy{Policy: synth.PolicyFixed},
	)
	st := s.m.Snapshot()
	want := synth.Config{Wave: synth.WaveCustom, Policy: synth.PolicyFixed, SweepLength: synth.MinSweepLength, Attack: 0, Release: 0.3}
	if st.Synth != want || st.BaseFrequency != 432 {
		t.Errorf("state = %+v", st)
	}
	s.apply(t, sequencer.TogglePlay{}, key(144, 49, 1))
	if got := s.synth.Played(); len(got) != 1 || got[0] != 432 {
		t.Errorf("played %v, want 432", got)
	}
}

func TestReplay(t *testing.T) {
	s := newSession()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.m.Run(ctx)

	if err := s.m.Apply(sequencer.PlayRecord{ID: 1}); !errors.Is(err, sequencer.ErrNotPlaying) {
		t.Fatalf("PlayRecord while paused error = %v", err)
	}
	s.apply(t, sequencer.TogglePlay{}, sequencer.ToggleRecord{}, key(144, 49, 1), key(144, 53, 1), sequencer.ToggleRecord{})
	if err := s.m.Apply(sequencer.PlayRecord{ID: 7}); !errors.Is(err, sequencer.ErrRecordNotFound) {
		t.Fatalf("PlayRecord(7) error = %v", err)
	}
	live := s.synth.Played()

	s.apply(t, sequencer.SetBaseFrequency{Hz: 220})
	s.apply(t, sequencer.PlayRecord{ID: 1})
	tk := s.clock.next(t)
	if tk.d != 250*time.Millisecond {
		t.Errorf("replay interval = %v", tk.d)
	}
	tk.c <- time.Now()
	tk.c <- time.Now()
	waitFor(t, "replayed notes", func() bool { return len(s.synth.Played()) == 4 })
	// replays use the recorded frequencies
	if got := s.synth.Played()[2:]; !reflect.DeepEqual(got, live) {
		t.Errorf("replayed %v, want %v", got, live)
	}
	waitFor(t, "replay to finish", func() bool { return s.m.Snapshot().Replays == 0 })
	if n := s.m.Snapshot().RecordingLen; n != 0 || len(s.m.Records()) != 1 {
		t.Errorf("replayed notes were recorded")
	}
}

func TestExclusiveReplay(t *testing.T) {
	s := newSession()
	s.apply(t, sequencer.TogglePlay{}, sequencer.ToggleRecord{}, key(144, 49, 1), sequencer.ToggleRecord{})
	s.apply(t, sequencer.PlayRecord{ID: 1, Speed: 2})
	first := s.clock.next(t)
	if first.d != 125*time.Millisecond {
		t.Errorf("speed 2 interval = %v", first.d)
	}
	s.apply(t, sequencer.PlayRecord{ID: 1})
	s.clock.next(t)
	if n := s.m.Snapshot().Replays; n != 1 {
		t.Errorf("replays = %d, want 1", n)
	}
	waitFor(t, "first replay to stop", first.Stopped)
	s.apply(t, sequencer.StopReplay{})
	if n := s.m.Snapshot().Replays; n != 0 {
		t.Errorf("replays after StopReplay = %d", n)
	}
}

func TestConcurrentReplays(t *testing.T) {
	s := newSession(sequencer.WithReplay(1, false))
	s.apply(t, sequencer.TogglePlay{}, sequencer.ToggleRecord{}, key(144, 49, 1), sequencer.ToggleRecord{})
	s.apply(t, sequencer.PlayRecord{ID: 1}, sequencer.PlayRecord{ID: 1})
	if n := s.m.Snapshot().Replays; n != 2 {
		t.Errorf("replays = %d, want 2", n)
	}
	s.apply(t, sequencer.TogglePlay{})
	if n := s.m.Snapshot().Replays; n != 0 {
		t.Errorf("pause left %d replays running", n)
	}
}

func TestDeviceChanged(t *testing.T) {
	s := newSession()
	if !s.m.Snapshot().NoInput() {
		t.Fatalf("inputs reported before any device")
	}
	ev := midi.DeviceEvent{Type: midi.DeviceConnected, Name: "KeyStep 32", Manufacturer: "Arturia"}
	s.apply(t, sequencer.DeviceChanged{Event: ev})
	if s.m.Snapshot().Inputs != 1 {
		t.Errorf("inputs = %d, want 1", s.m.Snapshot().Inputs)
	}
	ev.Type = midi.DeviceDisconnected
	s.apply(t, sequencer.DeviceChanged{Event: ev}, sequencer.DeviceChanged{Event: ev})
	if !s.m.Snapshot().NoInput() {
		t.Errorf("inputs = %d, want 0", s.m.Snapshot().Inputs)
	}
	events := s.m.Events()
	if len(events) != 3 || events[0].Message != "KeyStep 32 Arturia disconnected" || events[2].Message != "KeyStep 32 Arturia connected" {
		t.Errorf("events = %+v", events)
	}
}

func TestEventLogIsBounded(t *testing.T) {
	s := newSession(sequencer.WithEventLogSize(2))
	s.apply(t, key(144, 49, 100), key(144, 61, 100), key(144, 37, 100))
	events := s.m.Events()
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Message != "Key press: C3#/D3♭, Frequency: 220" {
		t.Errorf("newest event = %q", events[0].Message)
	}
}

func TestDispatchAndClose(t *testing.T) {
	s := newSession()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.m.Run(ctx)
		close(done)
	}()
	if !s.m.Dispatch(sequencer.TogglePlay{}) {
		t.Fatalf("Dispatch rejected a command")
	}
	waitFor(t, "dispatched command", func() bool { return s.m.Snapshot().Playing })

	if err := s.m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after Close")
	}
	if s.m.Snapshot().Playing {
		t.Errorf("still playing after Close")
	}
	if _, _, closes := s.out.counts(); closes != 1 {
		t.Errorf("output closed %d times", closes)
	}
	if s.m.Dispatch(sequencer.TogglePlay{}) {
		t.Errorf("Dispatch accepted a command after Close")
	}
	if err := s.m.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
