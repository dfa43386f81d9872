package db

import (
	"path/filepath"
	"testing"

	"easytavern/chat"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestConversationCRUD(t *testing.T) {
	database := newTestDB(t)

	conv, err := database.CreateConversation("My Chat", "My_Chat_abc123")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("conversation id should be set")
	}

	got, err := database.GetConversation(conv.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if got.Title != "My Chat" || got.Folder != "My_Chat_abc123" {
		t.Errorf("unexpected conversation: %+v", got)
	}

	if err := database.RenameConversation(conv.ID, "Renamed"); err != nil {
		t.Fatalf("RenameConversation failed: %v", err)
	}
	got, _ = database.GetConversation(conv.ID)
	if got.Title != "Renamed" {
		t.Errorf("title = %q after rename", got.Title)
	}

	if err := database.DeleteConversation(conv.ID); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}
	if _, err := database.GetConversation(conv.ID); err == nil {
		t.Error("conversation should be gone after delete")
	}
}

func TestMessagePersistence(t *testing.T) {
	database := newTestDB(t)
	conv, _ := database.CreateConversation("Chat", "Chat_x")

	store := NewMessageStore(database)

	first := chat.NewMessage("user", "hello")
	second := chat.NewMessage("assistant", "hi there")
	second.Model = "gpt-4o-mini"

	if err := store.SaveMessage(conv.ID, first); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if err := store.SaveMessage(conv.ID, second); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	loaded, err := store.LoadMessages(conv.ID)
	if err != nil {
		t.Fatalf("LoadMessages failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].Content != "hello" || loaded[1].Model != "gpt-4o-mini" {
		t.Errorf("unexpected messages: %+v", loaded)
	}

	edited := loaded[0]
	edited.Content = "edited"
	if err := store.UpdateMessage(conv.ID, edited); err != nil {
		t.Fatalf("UpdateMessage failed: %v", err)
	}
	loaded, _ = store.LoadMessages(conv.ID)
	if loaded[0].Content != "edited" {
		t.Error("update did not persist")
	}

	if err := store.DeleteMessage(conv.ID, loaded[0].ID); err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}
	loaded, _ = store.LoadMessages(conv.ID)
	if len(loaded) != 1 {
		t.Errorf("expected 1 message after delete, got %d", len(loaded))
	}

	if err := store.ClearMessages(conv.ID); err != nil {
		t.Fatalf("ClearMessages failed: %v", err)
	}
	loaded, _ = store.LoadMessages(conv.ID)
	if len(loaded) != 0 {
		t.Errorf("expected empty history after clear, got %d", len(loaded))
	}
}

func TestGeneratedImages(t *testing.T) {
	database := newTestDB(t)
	conv, _ := database.CreateConversation("Chat", "Chat_y")

	img, err := database.SaveGeneratedImage(conv.ID, "/data/chats/Chat_y/scene_1.png", "a tavern", "SD WebUI")
	if err != nil {
		t.Fatalf("SaveGeneratedImage failed: %v", err)
	}
	if img.ID == "" {
		t.Error("image id should be set")
	}

	images, err := database.ListGeneratedImages(conv.ID)
	if err != nil {
		t.Fatalf("ListGeneratedImages failed: %v", err)
	}
	if len(images) != 1 || images[0].Prompt != "a tavern" {
		t.Errorf("unexpected images: %+v", images)
	}
}

func TestSceneMessageRecordsGeneratedImage(t *testing.T) {
	database := newTestDB(t)
	conv, _ := database.CreateConversation("Chat", "Chat_s")
	store := NewMessageStore(database)

	msg := chat.NewMessage("assistant", "![scene](chats/Chat_s/scene_1.png)\n\n*a tavern*")
	msg.ImagePath = "chats/Chat_s/scene_1.png"
	if err := store.SaveMessage(conv.ID, msg); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	images, err := database.ListGeneratedImages(conv.ID)
	if err != nil {
		t.Fatalf("ListGeneratedImages failed: %v", err)
	}
	if len(images) != 1 || images[0].Path != msg.ImagePath {
		t.Errorf("scene message should record an image row: %+v", images)
	}
}

func TestSettingsKV(t *testing.T) {
	database := newTestDB(t)

	val, err := database.GetSetting("missing")
	if err != nil || val != "" {
		t.Errorf("missing key should return empty: %q, %v", val, err)
	}

	if err := database.SetSetting("last_conversation", "abc"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := database.SetSetting("last_conversation", "def"); err != nil {
		t.Fatalf("SetSetting upsert failed: %v", err)
	}

	val, _ = database.GetSetting("last_conversation")
	if val != "def" {
		t.Errorf("value = %q, want def", val)
	}
}

func TestGetStats(t *testing.T) {
	database := newTestDB(t)
	conv, _ := database.CreateConversation("Chat", "Chat_z")
	store := NewMessageStore(database)
	store.SaveMessage(conv.ID, chat.NewMessage("user", "hi"))

	stats, err := database.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.ConversationCount != 1 || stats.MessageCount != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
