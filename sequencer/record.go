package sequencer

import (
	"errors"
	"fmt"
	"time"

	"go-midisynth/pitch"
)

var (
	ErrEmptyRecord    = errors.New("record has no notes")
	ErrRecordNotFound = errors.New("record not found")
)

// DefaultRecordName is given to every new recording.
const DefaultRecordName = "New Recording"

// NoteInterval is the replay cadence at speed 1.
const NoteInterval = 250 * time.Millisecond

// Record is one finished (or in-progress) recording.
type Record struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Sequence  []pitch.Note `json:"sequence"`
	Timestamp time.Time    `json:"timestamp"`
}

func (r Record) Len() int { return len(r.Sequence) }

// Duration is how long the record takes to replay at speed 1.
func (r Record) Duration() time.Duration {
	return time.Duration(len(r.Sequence)) * NoteInterval
}

// Records is the in-memory collection of finished recordings in insertion
// order. It is owned by the Manager and not safe for concurrent use.
type Records struct {
	list []Record
}

func (rs *Records) Len() int { return len(rs.list) }

// Add appends r. Records without notes are rejected and the collection is
// left unchanged.
func (rs *Records) Add(r Record) error {
	if len(r.Sequence) == 0 {
		return fmt.Errorf("%w: %q (id %d)", ErrEmptyRecord, r.Name, r.ID)
	}
	r.Sequence = append([]pitch.Note(nil), r.Sequence...)
	rs.list = append(rs.list, r)
	return nil
}

// Find returns the record with the given id.
func (rs *Records) Find(id int) (Record, error) {
	for _, r := range rs.list {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
}

// All returns a copy of every record.
func (rs *Records) All() []Record {
	out := make([]Record, len(rs.list))
	copy(out, rs.list)
	return out
}
