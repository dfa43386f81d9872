package utils

import (
	"encoding/base64"
	"os"
	"strings"
	"testing"
)

func TestStorage_SaveImage(t *testing.T) {
	s := NewStorage(t.TempDir())
	original := []byte("image-bytes")

	path, err := s.SaveImage("Test_Chat_abc123", "scene_1.png", base64.StdEncoding.EncodeToString(original))
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back image: %v", err)
	}
	if string(written) != string(original) {
		t.Error("written bytes do not match original")
	}
}

func TestStorage_SaveImage_InvalidBase64(t *testing.T) {
	s := NewStorage(t.TempDir())
	if _, err := s.SaveImage("f", "x.png", "!!not-base64!!"); err == nil {
		t.Error("expected error for invalid base64 data")
	}
}

func TestChatFolderName(t *testing.T) {
	name := ChatFolderName("Captain Reynolds adventures")
	if !strings.HasPrefix(name, "Captain_Reynolds_") {
		t.Errorf("folder name = %q, want first two words prefix", name)
	}

	// Special characters are stripped
	name = ChatFolderName("héllo/world! extra")
	if strings.ContainsAny(name, "/!é") {
		t.Errorf("folder name should be sanitized, got %q", name)
	}

	// Empty titles still produce a usable folder
	if ChatFolderName("") == "" {
		t.Error("empty title should still produce a folder name")
	}
}
