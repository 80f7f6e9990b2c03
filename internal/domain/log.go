package domain

import "fmt"

// EventLog is a fixed-size ring of human-readable room events.
// It is informational only; nothing reads it back as game state.
type EventLog struct {
	buf  []string
	next int
	size int
}

// NewEventLog creates a log holding at most capacity lines.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = LogCapacity
	}
	return &EventLog{buf: make([]string, capacity)}
}

// Addf appends a formatted line, evicting the oldest one when full.
func (l *EventLog) Addf(format string, args ...any) {
	l.buf[l.next] = fmt.Sprintf(format, args...)
	l.next = (l.next + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

// Entries returns the lines most recent first.
func (l *EventLog) Entries() []string {
	out := make([]string, 0, l.size)
	for i := 1; i <= l.size; i++ {
		idx := (l.next - i + len(l.buf)) % len(l.buf)
		out = append(out, l.buf[idx])
	}
	return out
}

// Len returns the number of stored lines.
func (l *EventLog) Len() int { return l.size }

// Cap returns the capacity of the log.
func (l *EventLog) Cap() int { return len(l.buf) }
