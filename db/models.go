package db

import "time"

// Conversation represents a chat conversation
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Folder    string    `json:"folder"` // on-disk folder for generated images
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message represents a single message in a conversation
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"` // "user", "assistant" or "system"
	Content        string    `json:"content"`
	Model          string    `json:"model"`
	ImagePath      string    `json:"image_path"`
	CreatedAt      time.Time `json:"created_at"`
}

// GeneratedImage records a scene image produced for a conversation
type GeneratedImage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Path           string    `json:"path"`
	Prompt         string    `json:"prompt"`
	Provider       string    `json:"provider"`
	CreatedAt      time.Time `json:"created_at"`
}

// Setting represents a configuration setting
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
