package sequencer

import (
	"time"

	"go-midisynth/pitch"
)

// Recorder captures key presses into a Record. It is either idle or holds
// exactly one in-progress record.
type Recorder struct {
	records *Records
	current *Record
}

func NewRecorder(records *Records) *Recorder {
	return &Recorder{records: records}
}

func (r *Recorder) IsRecording() bool { return r.current != nil }

// Start begins a new record. The id is one past the number of finished
// records. Starting while recording keeps the record in progress.
func (r *Recorder) Start(now time.Time) {
	if r.current != nil {
		return
	}
	r.current = &Record{
		ID:        r.records.Len() + 1,
		Name:      DefaultRecordName,
		Timestamp: now,
	}
}

// Append adds a note while recording and reports whether it was kept.
func (r *Recorder) Append(n pitch.Note) bool {
	if r.current == nil {
		return false
	}
	r.current.Sequence = append(r.current.Sequence, n)
	return true
}

// Stop finalizes the record in progress. It returns the record and whether
// it was added; empty records are discarded.
func (r *Recorder) Stop() (Record, bool) {
	if r.current == nil {
		return Record{}, false
	}
	rec := *r.current
	r.current = nil
	if err := r.records.Add(rec); err != nil {
		return rec, false
	}
	return rec, true
}

// Current returns a copy of the record in progress.
func (r *Recorder) Current() (Record, bool) {
	if r.current == nil {
		return Record{}, false
	}
	rec := *r.current
	rec.Sequence = append([]pitch.Note(nil), rec.Sequence...)
	return rec, true
}
