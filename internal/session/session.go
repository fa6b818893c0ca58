// Package session holds per-activation conversation state: a correlation id
// for the server side and the ordered in-memory message log. Nothing here
// outlives the widget; teardown discards the log.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversational message. Immutable once appended.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewID generates the session identifier sent with every request so the
// server can correlate a browser session with its conversation state. The
// format is stable: assistant id, millisecond timestamp, 8 random hex chars.
func NewID(assistantID string) string {
	return fmt.Sprintf("%s_%d_%s", assistantID, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Log is the insertion-ordered message log for one widget activation.
// Messages are never removed; the whole log is dropped with the session.
type Log struct {
	mu       sync.Mutex
	messages []Message
}

// NewLog returns an empty message log.
func NewLog() *Log {
	return &Log{}
}

// Append records a message with the current timestamp and returns it.
func (l *Log) Append(role, content string) Message {
	msg := Message{Role: role, Content: content, CreatedAt: time.Now()}
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
	return msg
}

// Messages returns a snapshot of the log in insertion order.
func (l *Log) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}
