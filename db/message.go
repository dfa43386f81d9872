package db

import (
	"fmt"
	"time"
)

// CreateMessage inserts a new message into a conversation
func (db *DB) CreateMessage(msg *Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	_, err := db.conn.Exec(
		"INSERT INTO messages (id, conversation_id, role, content, model, image_path, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.Model, msg.ImagePath, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	// Keep the conversation's recency in step with its messages
	return db.TouchConversation(msg.ConversationID)
}

// GetMessage retrieves a message by ID
func (db *DB) GetMessage(id string) (*Message, error) {
	var msg Message
	err := db.conn.QueryRow(
		"SELECT id, conversation_id, role, content, model, image_path, created_at FROM messages WHERE id = ?",
		id,
	).Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.Model, &msg.ImagePath, &msg.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return &msg, nil
}

// ListMessages retrieves all messages in a conversation in insertion order
func (db *DB) ListMessages(conversationID string) ([]*Message, error) {
	rows, err := db.conn.Query(
		"SELECT id, conversation_id, role, content, model, image_path, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at ASC",
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.Model, &msg.ImagePath, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, nil
}

// UpdateMessageContent updates a message's content in place
func (db *DB) UpdateMessageContent(id, content string) error {
	_, err := db.conn.Exec(
		"UPDATE messages SET content = ? WHERE id = ?",
		content, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}

// DeleteMessage deletes a message
func (db *DB) DeleteMessage(id string) error {
	_, err := db.conn.Exec("DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// ClearMessages deletes all messages in a conversation
func (db *DB) ClearMessages(conversationID string) error {
	_, err := db.conn.Exec("DELETE FROM messages WHERE conversation_id = ?", conversationID)
	if err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	return nil
}
