package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaveGeneratedImage records a generated scene image
func (db *DB) SaveGeneratedImage(conversationID, path, prompt, provider string) (*GeneratedImage, error) {
	img := &GeneratedImage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Path:           path,
		Prompt:         prompt,
		Provider:       provider,
		CreatedAt:      time.Now(),
	}

	_, err := db.conn.Exec(
		"INSERT INTO generated_images (id, conversation_id, path, prompt, provider, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		img.ID, img.ConversationID, img.Path, img.Prompt, img.Provider, img.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save generated image: %w", err)
	}

	return img, nil
}

// ListGeneratedImages retrieves all images generated for a conversation
func (db *DB) ListGeneratedImages(conversationID string) ([]*GeneratedImage, error) {
	rows, err := db.conn.Query(
		"SELECT id, conversation_id, path, prompt, provider, created_at FROM generated_images WHERE conversation_id = ? ORDER BY created_at ASC",
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated images: %w", err)
	}
	defer rows.Close()

	var images []*GeneratedImage
	for rows.Next() {
		var img GeneratedImage
		if err := rows.Scan(&img.ID, &img.ConversationID, &img.Path, &img.Prompt, &img.Provider, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generated image: %w", err)
		}
		images = append(images, &img)
	}

	return images, nil
}
