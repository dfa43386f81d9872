package db

import (
	"easytavern/chat"
)

// MessageStore adapts the database to the conversation engine's persistence
// interface
type MessageStore struct {
	db *DB
}

// NewMessageStore creates a message store backed by the database
func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db}
}

// SaveMessage persists one conversation turn. Scene image turns also get
// a generated_images record so they can be listed per conversation.
func (s *MessageStore) SaveMessage(conversationID string, msg chat.Message) error {
	if err := s.db.CreateMessage(&Message{
		ID:             msg.ID,
		ConversationID: conversationID,
		Role:           msg.Role,
		Content:        msg.Content,
		Model:          msg.Model,
		ImagePath:      msg.ImagePath,
		CreatedAt:      msg.Timestamp,
	}); err != nil {
		return err
	}

	if msg.ImagePath != "" {
		if _, err := s.db.SaveGeneratedImage(conversationID, msg.ImagePath, msg.Content, msg.Model); err != nil {
			return err
		}
	}
	return nil
}

// UpdateMessage persists an edited message's content
func (s *MessageStore) UpdateMessage(conversationID string, msg chat.Message) error {
	return s.db.UpdateMessageContent(msg.ID, msg.Content)
}

// DeleteMessage removes one persisted message
func (s *MessageStore) DeleteMessage(conversationID, messageID string) error {
	return s.db.DeleteMessage(messageID)
}

// ClearMessages removes all persisted messages of a conversation
func (s *MessageStore) ClearMessages(conversationID string) error {
	return s.db.ClearMessages(conversationID)
}

// LoadMessages restores a conversation's history in engine form
func (s *MessageStore) LoadMessages(conversationID string) ([]chat.Message, error) {
	rows, err := s.db.ListMessages(conversationID)
	if err != nil {
		return nil, err
	}

	messages := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, chat.Message{
			ID:        row.ID,
			Role:      row.Role,
			Content:   row.Content,
			Timestamp: row.CreatedAt,
			Model:     row.Model,
			ImagePath: row.ImagePath,
		})
	}
	return messages, nil
}
