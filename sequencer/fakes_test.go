package sequencer_test

import (
	"math"
	"sync"
	"testing"
	"time"

	"go-midisynth/sequencer"
	"go-midisynth/synth"
)

type fakeSynth struct {
	mu       sync.Mutex
	played   []float64
	configs  []synth.Config
	silenced int
}

func (f *fakeSynth) Play(freq float64, cfg synth.Config) *synth.Tone {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, freq)
	f.configs = append(f.configs, cfg)
	return nil
}

func (f *fakeSynth) Silence() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.silenced++
}

func (f *fakeSynth) Played() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.played...)
}

type fakeOutput struct {
	mu                        sync.Mutex
	suspends, resumes, closes int
}

func (o *fakeOutput) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.suspends++
	return nil
}

func (o *fakeOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resumes++
	return nil
}

func (o *fakeOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closes++
	return nil
}

func (o *fakeOutput) counts() (suspends, resumes, closes int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspends, o.resumes, o.closes
}

// fakeClock hands every created ticker to the test, which fires it by hand.
type fakeClock struct {
	tickers chan *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{tickers: make(chan *fakeTicker, 8)}
}

type fakeTicker struct {
	d       time.Duration
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (c *fakeClock) NewTicker(d time.Duration) sequencer.Ticker {
	t := &fakeTicker{d: d, c: make(chan time.Time)}
	c.tickers <- t
	return t
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (c *fakeClock) next(t *testing.T) *fakeTicker {
	t.Helper()
	select {
	case tk := <-c.tickers:
		return tk
	case <-time.After(time.Second):
		t.Fatalf("no ticker created")
		return nil
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func nan() float64 { return math.NaN() }
