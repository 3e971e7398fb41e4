package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TypingPlaceholder is the transient text shown while an assistant reply is in flight.
const TypingPlaceholder = "Typing..."

// Message is a single transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Pending   bool      `json:"pending,omitempty"`
}

// NewMessage builds a resolved message stamped with the current time.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// NewPending builds the placeholder assistant message appended while a reply
// is awaited.
func NewPending() Message {
	msg := NewMessage(RoleAssistant, TypingPlaceholder)
	msg.Pending = true
	return msg
}

// FormatClock renders the creation time for display as hours:minutes.
func (m Message) FormatClock() string {
	return m.CreatedAt.Format("15:04")
}
