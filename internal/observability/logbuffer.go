package observability

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultLogBufferSize caps the in-memory log history served to UI
// clients on connect.
const DefaultLogBufferSize = 1000

// LogEntry is one captured log line, JSON-shaped for the event stream.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// LogBuffer is a fixed-size ring of recent log entries. Writers never
// block; the oldest entry is evicted when the ring is full.
type LogBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	full    bool
}

func NewLogBuffer(size int) *LogBuffer {
	if size < 1 {
		size = DefaultLogBufferSize
	}
	return &LogBuffer{entries: make([]LogEntry, size)}
}

// Record captures a zap entry and returns the stored LogEntry.
func (b *LogBuffer) Record(e zapcore.Entry) LogEntry {
	entry := LogEntry{
		Timestamp: e.Time,
		Level:     e.Level.String(),
		Message:   e.Message,
	}
	b.mu.Lock()
	b.entries[b.next] = entry
	b.next++
	if b.next == len(b.entries) {
		b.next = 0
		b.full = true
	}
	b.mu.Unlock()
	return entry
}

// Entries returns the buffered history, oldest first.
func (b *LogBuffer) Entries() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.full {
		out := make([]LogEntry, b.next)
		copy(out, b.entries[:b.next])
		return out
	}
	out := make([]LogEntry, 0, len(b.entries))
	out = append(out, b.entries[b.next:]...)
	out = append(out, b.entries[:b.next]...)
	return out
}

// Len returns how many entries are buffered.
func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		return len(b.entries)
	}
	return b.next
}
