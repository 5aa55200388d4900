package sequencer

import (
	"sync"
	"time"
)

// DefaultEventLogSize bounds the event log.
const DefaultEventLogSize = 200

// Entry is one line of the event log.
type Entry struct {
	Time    time.Time
	Message string
}

// String renders "15:04:05: message" in local time.
func (e Entry) String() string {
	return e.Time.Local().Format("15:04:05") + ": " + e.Message
}

// EventLog keeps the most recent entries, newest first.
type EventLog struct {
	mu      sync.RWMutex
	entries []Entry
	size    int
}

func NewEventLog(size int) *EventLog {
	if size <= 0 {
		size = DefaultEventLogSize
	}
	return &EventLog{size: size}
}

func (l *EventLog) Add(t time.Time, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = Entry{Time: t, Message: msg}
	if len(l.entries) > l.size {
		l.entries = l.entries[:l.size]
	}
}

// Entries returns a copy, newest first.
func (l *EventLog) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
