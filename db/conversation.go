package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateConversation creates a new conversation
func (db *DB) CreateConversation(title, folder string) (*Conversation, error) {
	now := time.Now()
	id := uuid.NewString()

	_, err := db.conn.Exec(
		"INSERT INTO conversations (id, title, folder, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, title, folder, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return &Conversation{
		ID:        id,
		Title:     title,
		Folder:    folder,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetConversation retrieves a conversation by ID
func (db *DB) GetConversation(id string) (*Conversation, error) {
	var conv Conversation
	err := db.conn.QueryRow(
		"SELECT id, title, folder, created_at, updated_at FROM conversations WHERE id = ?",
		id,
	).Scan(&conv.ID, &conv.Title, &conv.Folder, &conv.CreatedAt, &conv.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return &conv, nil
}

// ListConversations retrieves all conversations, most recently updated first
func (db *DB) ListConversations() ([]*Conversation, error) {
	rows, err := db.conn.Query(
		"SELECT id, title, folder, created_at, updated_at FROM conversations ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*Conversation
	for rows.Next() {
		var conv Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.Folder, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, &conv)
	}

	return conversations, nil
}

// RenameConversation updates a conversation's title
func (db *DB) RenameConversation(id, title string) error {
	_, err := db.conn.Exec(
		"UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?",
		title, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to rename conversation: %w", err)
	}
	return nil
}

// TouchConversation updates a conversation's updated_at timestamp
func (db *DB) TouchConversation(id string) error {
	_, err := db.conn.Exec(
		"UPDATE conversations SET updated_at = ? WHERE id = ?",
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

// DeleteConversation deletes a conversation and its messages
func (db *DB) DeleteConversation(id string) error {
	if _, err := db.conn.Exec("DELETE FROM messages WHERE conversation_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete conversation messages: %w", err)
	}
	if _, err := db.conn.Exec("DELETE FROM generated_images WHERE conversation_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete conversation images: %w", err)
	}
	if _, err := db.conn.Exec("DELETE FROM conversations WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}
