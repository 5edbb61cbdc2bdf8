package reqlog

import (
	"sync"
	"time"
)

// Log is a concurrent-safe fixed-size ring buffer of request records.
// Append and Clear are serialized by the same lock, so each append is a discrete event.
type Log struct {
	mu      sync.RWMutex
	entries []Record
	size    int
	head    int
	count   int
	last    time.Time
}

// NewLog creates a log that holds up to size records.
func NewLog(size int) *Log {
	if size <= 0 {
		size = 1000
	}
	return &Log{
		entries: make([]Record, size),
		size:    size,
	}
}

// Append stores rec, evicting the oldest record if the log is full, and returns the stored copy.
// The timestamp is clamped so it never goes backwards relative to the previous append.
func (l *Log) Append(rec Record) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Timestamp.Before(l.last) {
		rec.Timestamp = l.last
	}
	l.last = rec.Timestamp

	l.entries[l.head] = rec
	l.head = (l.head + 1) % l.size
	if l.count < l.size {
		l.count++
	}
	return rec
}

// All returns every stored record in insertion order. The result is never nil.
func (l *Log) All() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastLocked(l.count)
}

// Last returns the last n records in insertion order.
func (l *Log) Last(n int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > l.count {
		n = l.count
	}
	return l.lastLocked(n)
}

func (l *Log) lastLocked(n int) []Record {
	if n <= 0 {
		return []Record{}
	}
	result := make([]Record, n)
	start := (l.head - n + l.size) % l.size
	for i := range n {
		result[i] = l.entries[(start+i)%l.size]
	}
	return result
}

// Get returns the record with the given ID.
func (l *Log) Get(id string) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, rec := range l.lastLocked(l.count) {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

// Clear discards every record.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.entries)
	l.head = 0
	l.count = 0
}

// Count returns the number of records currently stored.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Capacity returns the maximum number of records retained.
func (l *Log) Capacity() int {
	return l.size
}
