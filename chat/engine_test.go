package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"easytavern/debuglog"
	"easytavern/llm"
)

// memoryStore records persistence calls for assertions
type memoryStore struct {
	mu      sync.Mutex
	saved   []Message
	cleared bool
}

func (s *memoryStore) SaveMessage(conversationID string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, msg)
	return nil
}

func (s *memoryStore) UpdateMessage(conversationID string, msg Message) error { return nil }

func (s *memoryStore) DeleteMessage(conversationID, messageID string) error { return nil }

func (s *memoryStore) ClearMessages(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = true
	return nil
}

func (s *memoryStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// memoryImageStorage writes nothing, just reports a path
type memoryImageStorage struct {
	mu    sync.Mutex
	files []string
}

func (s *memoryImageStorage) SaveImage(folder, filename, base64Data string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join("chats", folder, filename)
	s.files = append(s.files, path)
	return path, nil
}

func snapshotFor(serverURL string, scene SceneSettings) SettingsFunc {
	return func() Snapshot {
		return Snapshot{
			Provider: llm.TextProvider{
				ID:      "test",
				Name:    "Test",
				Kind:    llm.TextKindOpenAI,
				BaseURL: serverURL,
				Enabled: true,
			},
			HasProvider: true,
			Chat: Settings{
				Model:        "gpt-4o-mini",
				Temperature:  0.7,
				MaxTokens:    2048,
				TopP:         0.9,
				SystemPrompt: "You are a helpful assistant.",
			},
			Scene: scene,
		}
	}
}

func newTestEngine(t *testing.T, chatURL string, scene SceneSettings, imageRouter *llm.ImageRouter, storage ImageStorage, store Store) (*Engine, *debuglog.Sink, *SceneGenerator) {
	t.Helper()
	logs := debuglog.NewSink()
	router := llm.NewChatRouter(http.DefaultClient, logs)
	scenes := NewSceneGenerator(router, imageRouter, storage, logs)
	engine := NewEngine("conv-1", "Test_Chat_abc123", router, scenes, store, logs, snapshotFor(chatURL, scene))
	return engine, logs, scenes
}

func TestEngine_SendAppendsBothTurns(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`{"choices":[{"message":{"content":"hello back"}}]}`))
	}))
	defer server.Close()

	store := &memoryStore{}
	engine, _, _ := newTestEngine(t, server.URL, SceneSettings{}, llm.NewImageRouter(nil, debuglog.NewSink()), &memoryImageStorage{}, store)

	if err := engine.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	msgs := engine.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[0].Content != "hi" {
		t.Errorf("unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Role != "assistant" || msgs[1].Content != "hello back" {
		t.Errorf("unexpected assistant message: %+v", msgs[1])
	}
	if msgs[1].Model != "gpt-4o-mini" {
		t.Errorf("assistant message should record the model, got %q", msgs[1].Model)
	}
	if engine.State() != StateIdle {
		t.Errorf("state = %v, want Idle", engine.State())
	}

	// System prompt goes out as a synthetic leading message
	if !strings.Contains(gotBody, `"role":"system"`) {
		t.Errorf("request missing system message: %s", gotBody)
	}

	if store.savedCount() != 2 {
		t.Errorf("expected both turns persisted, got %d", store.savedCount())
	}
}

func TestEngine_SendFailureSetsErrorState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend down"))
	}))
	defer server.Close()

	engine, _, _ := newTestEngine(t, server.URL, SceneSettings{}, llm.NewImageRouter(nil, debuglog.NewSink()), &memoryImageStorage{}, &memoryStore{})

	err := engine.Send(context.Background(), "hi")
	var apiErr *llm.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if engine.State() != StateError {
		t.Errorf("state = %v, want Error", engine.State())
	}
	if engine.ErrorText() == "" {
		t.Error("error text should be recorded")
	}
	// User message stays in history; no assistant message appended
	if msgs := engine.Messages(); len(msgs) != 1 || msgs[0].Role != "user" {
		t.Errorf("unexpected history after failure: %+v", msgs)
	}
}

func TestEngine_ErrorStateDismissedByNextSend(t *testing.T) {
	fail := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	engine, _, _ := newTestEngine(t, server.URL, SceneSettings{}, llm.NewImageRouter(nil, debuglog.NewSink()), &memoryImageStorage{}, &memoryStore{})

	engine.Send(context.Background(), "first")
	if engine.State() != StateError {
		t.Fatal("expected error state after failed send")
	}

	fail = false
	if err := engine.Send(context.Background(), "second"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if engine.State() != StateIdle || engine.ErrorText() != "" {
		t.Error("next send should clear the error state")
	}
}

func TestEngine_RejectsConcurrentSend(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.Write([]byte(`{"choices":[{"message":{"content":"slow"}}]}`))
	}))
	defer server.Close()

	engine, _, _ := newTestEngine(t, server.URL, SceneSettings{}, llm.NewImageRouter(nil, debuglog.NewSink()), &memoryImageStorage{}, &memoryStore{})

	done := make(chan error, 1)
	go func() { done <- engine.Send(context.Background(), "first") }()
	<-started

	if err := engine.Send(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}
}

func TestEngine_SceneTriggerAppendsImageMessage(t *testing.T) {
	imageB64 := base64.StdEncoding.EncodeToString([]byte("scene-image"))

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	captionNext := false
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if captionNext {
			w.Write([]byte(`{"choices":[{"message":{"content":"a quiet tavern at dusk"}}]}`))
			return
		}
		captionNext = true
		w.Write([]byte(`{"choices":[{"message":{"content":"assistant reply"}}]}`))
	})
	mux.HandleFunc("/sdapi/v1/txt2img", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"images": []string{imageB64}})
	})

	logs := debuglog.NewSink()
	imageRouter := llm.NewImageRouter(server.Client(), logs)
	storage := &memoryImageStorage{}
	scene := SceneSettings{
		Enabled:     true,
		Provider:    llm.ImageProvider{ID: "a1111", Name: "SD", Kind: llm.ImageKindAutomatic1111, BaseURL: server.URL, Enabled: true},
		HasProvider: true,
		Frequency:   1,
		Style:       llm.StyleGraphicNovel,
	}

	store := &memoryStore{}
	engine, _, scenes := newTestEngine(t, server.URL, scene, imageRouter, storage, store)

	if err := engine.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	scenes.Wait()

	msgs := engine.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected user+assistant+scene messages, got %d", len(msgs))
	}
	sceneMsg := msgs[2]
	if sceneMsg.Role != "assistant" || sceneMsg.ImagePath == "" {
		t.Errorf("unexpected scene message: %+v", sceneMsg)
	}
	if !strings.Contains(sceneMsg.Content, "a quiet tavern at dusk") {
		t.Errorf("scene message should carry the caption, got %q", sceneMsg.Content)
	}
	if len(storage.files) != 1 {
		t.Errorf("expected one saved image, got %d", len(storage.files))
	}
	if store.savedCount() != 3 {
		t.Errorf("scene message should be persisted too, got %d saves", store.savedCount())
	}
}

func TestEngine_SceneFailureIsSilent(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"reply"}}]}`))
	})
	mux.HandleFunc("/sdapi/v1/txt2img", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	logs := debuglog.NewSink()
	imageRouter := llm.NewImageRouter(server.Client(), logs)
	scene := SceneSettings{
		Enabled:     true,
		Provider:    llm.ImageProvider{ID: "a1111", Name: "SD", Kind: llm.ImageKindAutomatic1111, BaseURL: server.URL, Enabled: true},
		HasProvider: true,
		Frequency:   1,
	}

	sink := debuglog.NewSink()
	router := llm.NewChatRouter(server.Client(), sink)
	scenes := NewSceneGenerator(router, imageRouter, &memoryImageStorage{}, sink)
	engine := NewEngine("conv-1", "folder", router, scenes, &memoryStore{}, sink, snapshotFor(server.URL, scene))

	if err := engine.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	scenes.Wait()

	if engine.State() != StateIdle || engine.ErrorText() != "" {
		t.Error("scene failure must not surface as a chat error")
	}
	if len(engine.Messages()) != 2 {
		t.Error("scene failure must not alter conversation state")
	}

	errorLogged := false
	for _, e := range sink.List() {
		if e.Kind == debuglog.KindImage && e.Phase == debuglog.PhaseError {
			errorLogged = true
		}
	}
	if !errorLogged {
		t.Error("scene failure should be logged to the debug sink")
	}
}

func TestEngine_ClearEditDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"reply"}}]}`))
	}))
	defer server.Close()

	store := &memoryStore{}
	engine, _, _ := newTestEngine(t, server.URL, SceneSettings{}, llm.NewImageRouter(nil, debuglog.NewSink()), &memoryImageStorage{}, store)

	engine.Send(context.Background(), "one")
	engine.Send(context.Background(), "two")
	msgs := engine.Messages()
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}

	target := msgs[1]
	engine.EditMessage(target.ID, "edited")
	edited := engine.Messages()[1]
	if edited.Content != "edited" {
		t.Error("edit did not replace content")
	}
	if edited.ID != target.ID || !edited.Timestamp.Equal(target.Timestamp) || edited.Role != target.Role {
		t.Error("edit must preserve id, timestamp and role")
	}

	engine.DeleteMessage(target.ID)
	if len(engine.Messages()) != 3 {
		t.Error("delete did not remove the message")
	}

	engine.Clear()
	if len(engine.Messages()) != 0 || engine.ErrorText() != "" {
		t.Error("clear should empty history and error")
	}
	if !store.cleared {
		t.Error("clear should propagate to the store")
	}
}
