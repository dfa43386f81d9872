package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single conversation turn. Messages are created on send or
// receive, mutated only by explicit edit, and never reordered.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user", "assistant" or "system"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model,omitempty"`
	ImagePath string    `json:"image_path,omitempty"` // set on scene image messages
}

// NewMessage creates a message with a fresh id and current timestamp
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
