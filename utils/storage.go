package utils

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Storage persists chats and generated images under a data directory,
// one folder per conversation
type Storage struct {
	dataDir string
}

// NewStorage creates a storage rooted at dataDir
func NewStorage(dataDir string) *Storage {
	return &Storage{dataDir: dataDir}
}

// ChatDir returns the on-disk directory for a conversation folder name
func (s *Storage) ChatDir(folder string) string {
	return filepath.Join(s.dataDir, "chats", folder)
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// SaveImage decodes base64 image data and writes it into the conversation
// folder, returning the file's path
func (s *Storage) SaveImage(folder, filename, base64Data string) (string, error) {
	dir := s.ChatDir(folder)
	if err := EnsureDir(dir); err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode image data: %w", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path, nil
}

var folderNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// ChatFolderName derives a conversation folder name from a title: the
// first two words joined by underscores plus a short random suffix
func ChatFolderName(title string) string {
	words := strings.Fields(title)
	if len(words) > 2 {
		words = words[:2]
	}
	base := folderNameSanitizer.ReplaceAllString(strings.Join(words, "_"), "")
	if base == "" {
		base = "chat"
	}
	return fmt.Sprintf("%s_%s", base, uuid.NewString()[:6])
}
