package synth

import "sync"

// DefaultScopeSize matches a 2048 point analyser window.
const DefaultScopeSize = 2048

// RingBuffer keeps the most recent len(Buffer) values. Cursor points at the
// oldest value.
type RingBuffer[T any] struct {
	Buffer []T
	Cursor int
}

func (r *RingBuffer[T]) WriteWrap(values []T) {
	if len(r.Buffer) == 0 {
		return
	}
	r.Cursor = (r.Cursor + len(values)) % len(r.Buffer)
	a := min(len(values), r.Cursor)                 // how many values to copy before the cursor
	b := min(len(values)-a, len(r.Buffer)-r.Cursor) // how many values to copy to the end of the buffer
	copy(r.Buffer[r.Cursor-a:r.Cursor], values[len(values)-a:])
	copy(r.Buffer[len(r.Buffer)-b:], values[len(values)-a-b:])
}

// Ordered appends the contents oldest first to dst.
func (r *RingBuffer[T]) Ordered(dst []T) []T {
	dst = append(dst, r.Buffer[r.Cursor:]...)
	return append(dst, r.Buffer[:r.Cursor]...)
}

// Scope is the visualization tap of the synth. Writing into it never blocks
// rendering for long and reading never changes what is rendered.
type Scope struct {
	mu   sync.Mutex
	ring RingBuffer[float32]
}

func NewScope(size int) *Scope {
	return &Scope{ring: RingBuffer[float32]{Buffer: make([]float32, size)}}
}

func (s *Scope) Len() int { return len(s.ring.Buffer) }

func (s *Scope) Write(samples []float32) {
	s.mu.Lock()
	s.ring.WriteWrap(samples)
	s.mu.Unlock()
}

// Snapshot copies the current window, oldest sample first, into dst[:0].
func (s *Scope) Snapshot(dst []float32) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Ordered(dst[:0])
}

// TimeDomainBytes maps the current window to unsigned bytes where 128 is
// silence, 0 is -1 and 255 is +1.
func (s *Scope) TimeDomainBytes(dst []byte) []byte {
	samples := s.Snapshot(nil)
	dst = dst[:0]
	for _, v := range samples {
		b := 128 + v*128
		switch {
		case b < 0:
			b = 0
		case b > 255:
			b = 255
		}
		dst = append(dst, byte(b))
	}
	return dst
}
