package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"easytavern/debuglog"
	"easytavern/llm"

	"github.com/google/uuid"
)

// Scene image generation defaults
const (
	sceneImageWidth  = 512
	sceneImageHeight = 512
	sceneImageSteps  = 20
)

// scenePromptInstruction is the fixed system instruction used to obtain a
// caption for the current scene
const scenePromptInstruction = "Describe the current visual scene of the conversation. Output only the visual description, nothing else."

// SceneSettings is a snapshot of the image generation configuration taken
// at trigger time
type SceneSettings struct {
	Enabled        bool
	Provider       llm.ImageProvider
	HasProvider    bool
	Frequency      int
	Style          llm.ImageStyle
	CustomStyle    string
	NegativePrompt string
}

// ImageStorage persists generated images into a conversation folder and
// returns the on-disk path
type ImageStorage interface {
	SaveImage(folder, filename, base64Data string) (string, error)
}

// SceneGenerator produces scene images for triggered turns. Generation is
// best-effort: every failure is logged to the debug sink and swallowed.
// At most one generation runs per conversation at a time; a trigger that
// fires while one is in flight is skipped.
type SceneGenerator struct {
	chat    *llm.ChatRouter
	images  *llm.ImageRouter
	storage ImageStorage
	logs    *debuglog.Sink

	mu       sync.Mutex
	inflight map[string]bool
	wg       sync.WaitGroup
}

// NewSceneGenerator creates a scene generator
func NewSceneGenerator(chatRouter *llm.ChatRouter, imageRouter *llm.ImageRouter, storage ImageStorage, logs *debuglog.Sink) *SceneGenerator {
	return &SceneGenerator{
		chat:     chatRouter,
		images:   imageRouter,
		storage:  storage,
		logs:     logs,
		inflight: make(map[string]bool),
	}
}

// Generate runs the caption-then-image pipeline for one triggered turn and
// hands the finished scene message to deliver. It returns immediately;
// the work happens on a background goroutine.
func (g *SceneGenerator) Generate(ctx context.Context, conversationID, folder string, window []Message, textProvider llm.TextProvider, chatSettings Settings, scene SceneSettings, deliver func(Message)) {
	g.mu.Lock()
	if g.inflight[conversationID] {
		g.mu.Unlock()
		g.logs.Append(debuglog.KindImage, debuglog.PhaseInfo, "scene generation already in flight, skipping", scene.Provider.Name, "")
		return
	}
	g.inflight[conversationID] = true
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			g.mu.Lock()
			delete(g.inflight, conversationID)
			g.mu.Unlock()
		}()

		msg, err := g.generate(ctx, folder, window, textProvider, chatSettings, scene)
		if err != nil {
			g.logs.Append(debuglog.KindImage, debuglog.PhaseError, err.Error(), scene.Provider.Name, "")
			return
		}
		deliver(msg)
	}()
}

// Wait blocks until all in-flight generations finish. Used at shutdown
// and by tests.
func (g *SceneGenerator) Wait() {
	g.wg.Wait()
}

func (g *SceneGenerator) generate(ctx context.Context, folder string, window []Message, textProvider llm.TextProvider, chatSettings Settings, scene SceneSettings) (Message, error) {
	if !scene.HasProvider {
		return Message{}, fmt.Errorf("no active image provider selected")
	}

	caption, err := g.caption(ctx, window, textProvider, chatSettings)
	if err != nil {
		return Message{}, fmt.Errorf("scene caption failed: %w", err)
	}

	stylePrefix := llm.StylePrompt(scene.Style, scene.CustomStyle)
	fullPrompt := stylePrefix + caption

	g.logs.Append(debuglog.KindImage, debuglog.PhaseInfo, map[string]interface{}{
		"fullPrompt": fullPrompt,
		"negative":   scene.NegativePrompt,
		"provider":   scene.Provider.Name,
	}, scene.Provider.Name, "")

	result, err := g.images.Generate(ctx, scene.Provider, llm.ImageRequest{
		Prompt:         fullPrompt,
		NegativePrompt: scene.NegativePrompt,
		Width:          sceneImageWidth,
		Height:         sceneImageHeight,
		Steps:          sceneImageSteps,
	})
	if err != nil {
		return Message{}, fmt.Errorf("scene image generation failed: %w", err)
	}

	filename := fmt.Sprintf("scene_%d_%s.png", time.Now().Unix(), uuid.NewString()[:8])
	path, err := g.storage.SaveImage(folder, filename, result.Data)
	if err != nil {
		return Message{}, fmt.Errorf("failed to save scene image: %w", err)
	}

	msg := NewMessage("assistant", fmt.Sprintf("![scene](%s)\n\n*%s*", path, caption))
	msg.ImagePath = path
	return msg, nil
}

// caption asks the text provider for a visual description of the context
// window
func (g *SceneGenerator) caption(ctx context.Context, window []Message, provider llm.TextProvider, settings Settings) (string, error) {
	messages := make([]llm.ChatMessage, 0, len(window)+1)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: scenePromptInstruction})
	for _, m := range window {
		messages = append(messages, llm.ChatMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := g.chat.Send(ctx, provider, llm.ChatRequest{
		Model:            settings.Model,
		Messages:         messages,
		Temperature:      settings.Temperature,
		MaxTokens:        settings.MaxTokens,
		TopP:             settings.TopP,
		FrequencyPenalty: settings.FrequencyPenalty,
		PresencePenalty:  settings.PresencePenalty,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
