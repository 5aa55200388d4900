package sequencer

import (
	"math"
	"sync"
	"time"

	"go-midisynth/pitch"
)

// Ticker is the part of time.Ticker the player uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock makes replay timing replaceable in tests.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct{ t *time.Ticker }

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// RealClock uses time.Ticker.
var RealClock Clock = realClock{}

// Player replays note sequences at a fixed cadence.
type Player struct {
	clock Clock
}

func NewPlayer(clock Clock) *Player {
	if clock == nil {
		clock = RealClock
	}
	return &Player{clock: clock}
}

// Interval returns the time between notes at speed. Non-positive or
// non-finite speeds replay at speed 1.
func Interval(speed float64) time.Duration {
	if !(speed > 0) || math.IsInf(speed, 0) {
		speed = 1
	}
	return time.Duration(float64(NoteInterval) / speed)
}

// Playback is one running replay.
type Playback struct {
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
	Interval time.Duration
	Len      int
}

// Cancel stops the replay before its next note. It is safe to call more than
// once and after the replay finished.
func (p *Playback) Cancel() {
	if p == nil {
		return
	}
	p.once.Do(func() { close(p.stop) })
}

// Done is closed when the replay has ended.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Play schedules seq. The first note fires one interval after the call and
// each following tick fires the next note in order. trigger runs on the
// playback goroutine. An empty sequence returns nil.
func (pl *Player) Play(seq []pitch.Note, speed float64, trigger func(pitch.Note)) *Playback {
	if len(seq) == 0 {
		return nil
	}
	notes := append([]pitch.Note(nil), seq...)
	p := &Playback{
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		Interval: Interval(speed),
		Len:      len(notes),
	}
	ticker := pl.clock.NewTicker(p.Interval)
	go func() {
		defer close(p.done)
		defer ticker.Stop()
		for _, n := range notes {
			select {
			case <-p.stop:
				return
			case <-ticker.C():
			}
			// a cancel racing the tick wins
			select {
			case <-p.stop:
				return
			default:
			}
			trigger(n)
		}
	}()
	return p
}
