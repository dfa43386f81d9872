package chat

import (
	"context"
	"errors"
	"sync"

	"easytavern/debuglog"
	"easytavern/llm"
)

// State is the engine's send lifecycle state
type State int

const (
	StateIdle State = iota
	StateSending
	StateError
)

// ErrBusy is returned when a send starts while another is in progress
var ErrBusy = errors.New("a message is already being sent")

// Settings are the sampling parameters and system prompt applied to every
// chat turn
type Settings struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	SystemPrompt     string
}

// Snapshot is the configuration state read at the start of each send:
// which provider to talk to, the chat settings, and the scene image policy
type Snapshot struct {
	Provider    llm.TextProvider
	HasProvider bool
	Chat        Settings
	Scene       SceneSettings
}

// SettingsFunc supplies the current configuration snapshot. Injected at
// construction so the engine never reaches into global state.
type SettingsFunc func() Snapshot

// Store persists conversation history. Persistence failures are logged and
// never fail a chat turn.
type Store interface {
	SaveMessage(conversationID string, msg Message) error
	UpdateMessage(conversationID string, msg Message) error
	DeleteMessage(conversationID, messageID string) error
	ClearMessages(conversationID string) error
}

// Engine owns the message history of one conversation and drives the chat
// router for each user turn. It is single-flight: while a send is in
// progress new sends are rejected.
type Engine struct {
	conversationID string
	folder         string

	router   *llm.ChatRouter
	scenes   *SceneGenerator
	store    Store
	logs     *debuglog.Sink
	settings SettingsFunc

	mu       sync.Mutex
	state    State
	errText  string
	messages []Message
	onChange func() // notified after every history mutation, may be nil
}

// NewEngine creates an engine for one conversation
func NewEngine(conversationID, folder string, router *llm.ChatRouter, scenes *SceneGenerator, store Store, logs *debuglog.Sink, settings SettingsFunc) *Engine {
	return &Engine{
		conversationID: conversationID,
		folder:         folder,
		router:         router,
		scenes:         scenes,
		store:          store,
		logs:           logs,
		settings:       settings,
	}
}

// SetOnChange registers a callback invoked after each history mutation
func (e *Engine) SetOnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// State returns the current lifecycle state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ErrorText returns the last chat error, empty when none
func (e *Engine) ErrorText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errText
}

// Messages returns a copy of the history
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Message(nil), e.messages...)
}

// Restore seeds the history from persisted messages
func (e *Engine) Restore(messages []Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append([]Message(nil), messages...)
}

// Send appends the user turn, dispatches the chat request and appends the
// assistant reply. After a successful reply the scene image policy is
// evaluated; scene generation runs in the background and its failures never
// surface as chat errors.
func (e *Engine) Send(ctx context.Context, content string) error {
	snap := e.settings()
	if !snap.HasProvider {
		e.mu.Lock()
		e.state = StateError
		e.errText = "No provider selected"
		e.mu.Unlock()
		return errors.New("no provider selected")
	}

	e.mu.Lock()
	if e.state == StateSending {
		e.mu.Unlock()
		return ErrBusy
	}
	e.state = StateSending
	e.errText = ""

	userMsg := NewMessage("user", content)
	e.messages = append(e.messages, userMsg)
	e.persist(userMsg)
	request := e.buildRequestLocked(snap)
	e.notifyLocked()
	e.mu.Unlock()

	resp, err := e.router.Send(ctx, snap.Provider, request)

	e.mu.Lock()
	if err != nil {
		e.state = StateError
		e.errText = err.Error()
		e.notifyLocked()
		e.mu.Unlock()
		return err
	}

	assistantMsg := NewMessage("assistant", resp.Text)
	assistantMsg.Model = snap.Chat.Model
	e.messages = append(e.messages, assistantMsg)
	e.persist(assistantMsg)
	e.state = StateIdle
	e.notifyLocked()

	count := e.turnMessageCountLocked()
	// Copy so a later edit of the history cannot race the background caption
	window := append([]Message(nil), ContextWindow(e.messages, ContextWindowSize(snap.Scene.Frequency))...)
	e.mu.Unlock()

	if snap.Scene.Enabled && ShouldTrigger(count, snap.Scene.Frequency) {
		e.scenes.Generate(ctx, e.conversationID, e.folder, window, snap.Provider, snap.Chat, snap.Scene, e.appendSceneMessage)
	}

	return nil
}

// buildRequestLocked assembles the wire request from the system prompt and
// the full history. Caller holds the lock.
func (e *Engine) buildRequestLocked(snap Snapshot) llm.ChatRequest {
	messages := make([]llm.ChatMessage, 0, len(e.messages)+1)
	if snap.Chat.SystemPrompt != "" {
		messages = append(messages, llm.ChatMessage{Role: "system", Content: snap.Chat.SystemPrompt})
	}
	for _, m := range e.messages {
		messages = append(messages, llm.ChatMessage{Role: m.Role, Content: m.Content})
	}

	return llm.ChatRequest{
		Model:            snap.Chat.Model,
		Messages:         messages,
		Temperature:      snap.Chat.Temperature,
		MaxTokens:        snap.Chat.MaxTokens,
		TopP:             snap.Chat.TopP,
		FrequencyPenalty: snap.Chat.FrequencyPenalty,
		PresencePenalty:  snap.Chat.PresencePenalty,
	}
}

// turnMessageCountLocked counts user and assistant messages for the scene
// trigger arithmetic. Caller holds the lock.
func (e *Engine) turnMessageCountLocked() int {
	count := 0
	for _, m := range e.messages {
		if m.Role == "user" || m.Role == "assistant" {
			count++
		}
	}
	return count
}

// appendSceneMessage inserts a finished scene image message into the history
func (e *Engine) appendSceneMessage(msg Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append(e.messages, msg)
	e.persist(msg)
	e.notifyLocked()
}

// Clear empties the history and clears any error. Provider configuration
// is untouched.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = nil
	e.errText = ""
	e.state = StateIdle
	if e.store != nil {
		if err := e.store.ClearMessages(e.conversationID); err != nil {
			e.logs.Append(debuglog.KindSystem, debuglog.PhaseError, "failed to clear persisted messages: "+err.Error(), "", "")
		}
	}
	e.notifyLocked()
}

// DeleteMessage removes one message from the history
func (e *Engine) DeleteMessage(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, m := range e.messages {
		if m.ID == id {
			e.messages = append(e.messages[:i], e.messages[i+1:]...)
			if e.store != nil {
				if err := e.store.DeleteMessage(e.conversationID, id); err != nil {
					e.logs.Append(debuglog.KindSystem, debuglog.PhaseError, "failed to delete persisted message: "+err.Error(), "", "")
				}
			}
			e.notifyLocked()
			return
		}
	}
}

// EditMessage replaces a message's content in place, preserving its id,
// role and timestamp
func (e *Engine) EditMessage(id, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, m := range e.messages {
		if m.ID == id {
			e.messages[i].Content = content
			if e.store != nil {
				if err := e.store.UpdateMessage(e.conversationID, e.messages[i]); err != nil {
					e.logs.Append(debuglog.KindSystem, debuglog.PhaseError, "failed to update persisted message: "+err.Error(), "", "")
				}
			}
			e.notifyLocked()
			return
		}
	}
}

// persist writes one message through the store, logging failures. Caller
// holds the lock.
func (e *Engine) persist(msg Message) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveMessage(e.conversationID, msg); err != nil {
		e.logs.Append(debuglog.KindSystem, debuglog.PhaseError, "failed to persist message: "+err.Error(), "", "")
	}
}

func (e *Engine) notifyLocked() {
	if e.onChange != nil {
		go e.onChange()
	}
}
