package ui

import (
	"net/http"
	"time"

	"easytavern/chat"
	"easytavern/db"
	"easytavern/debuglog"
	"easytavern/llm"
	"easytavern/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
)

const lastConversationKey = "last_conversation_id"

// App represents the main application
type App struct {
	fyneApp    fyne.App
	window     fyne.Window
	config     *utils.Config
	configPath string
	db         *db.DB
	logger     *utils.Logger

	registry    *llm.Registry
	sink        *debuglog.Sink
	chatRouter  *llm.ChatRouter
	imageRouter *llm.ImageRouter
	storage     *utils.Storage
	scenes      *chat.SceneGenerator
	store       *db.MessageStore

	chatView     *ChatView
	settingsView *SettingsView
	debugView    *DebugView
	tabs         *container.AppTabs

	// One engine per open conversation
	engines map[string]*chat.Engine
}

// NewApp creates a new application instance
func NewApp(config *utils.Config, configPath string, database *db.DB, logger *utils.Logger) *App {
	fyneApp := app.NewWithID("easytavern")
	window := fyneApp.NewWindow("EasyTavern")
	window.Resize(fyne.NewSize(
		float32(config.UI.WindowWidth),
		float32(config.UI.WindowHeight),
	))

	sink := debuglog.NewSink()
	httpClient := &http.Client{Timeout: 5 * time.Minute}
	storage := utils.NewStorage(config.Data.DataDir)
	chatRouter := llm.NewChatRouter(httpClient, sink)
	imageRouter := llm.NewImageRouter(httpClient, sink)

	application := &App{
		fyneApp:     fyneApp,
		window:      window,
		config:      config,
		configPath:  configPath,
		db:          database,
		logger:      logger,
		registry:    llm.NewRegistry(config.Providers, config.ImageGeneration.Providers),
		sink:        sink,
		chatRouter:  chatRouter,
		imageRouter: imageRouter,
		storage:     storage,
		scenes:      chat.NewSceneGenerator(chatRouter, imageRouter, storage, sink),
		store:       db.NewMessageStore(database),
		engines:     make(map[string]*chat.Engine),
	}

	window.SetOnClosed(func() {
		size := window.Canvas().Size()
		application.config.UI.WindowWidth = int(size.Width)
		application.config.UI.WindowHeight = int(size.Height)
		if err := application.saveConfig(); err != nil {
			application.logger.Error("Failed to save window size: %v", err)
		}
	})

	application.buildUI()

	return application
}

// buildUI assembles the tabbed main window
func (a *App) buildUI() {
	a.chatView = NewChatView(a)
	a.settingsView = NewSettingsView(a)
	a.debugView = NewDebugView(a)

	a.tabs = container.NewAppTabs(
		container.NewTabItem("Chat", a.chatView.Build()),
		container.NewTabItem("Settings", a.settingsView.Build()),
		container.NewTabItem("Debug Log", a.debugView.Build()),
	)
	a.tabs.SetTabLocation(container.TabLocationTop)

	a.window.SetContent(a.tabs)
}

// engineFor returns the engine for a conversation, creating and restoring
// it on first use
func (a *App) engineFor(conv *db.Conversation) *chat.Engine {
	if engine, ok := a.engines[conv.ID]; ok {
		return engine
	}

	engine := chat.NewEngine(conv.ID, conv.Folder, a.chatRouter, a.scenes, a.store, a.sink, a.snapshot)
	if messages, err := a.store.LoadMessages(conv.ID); err != nil {
		a.logger.Error("Failed to load messages for %s: %v", conv.ID, err)
	} else {
		engine.Restore(messages)
	}

	a.engines[conv.ID] = engine
	return engine
}

// snapshot reads the current configuration for the conversation engine
func (a *App) snapshot() chat.Snapshot {
	cs := a.config.ChatSettings
	ig := a.config.ImageGeneration

	provider, hasProvider := a.registry.TextProvider(cs.ActiveProvider)
	if hasProvider && !provider.Enabled {
		hasProvider = false
	}

	imageProvider, hasImageProvider := a.registry.ImageProvider(ig.ActiveProvider)
	if hasImageProvider && !imageProvider.Enabled {
		hasImageProvider = false
	}

	return chat.Snapshot{
		Provider:    provider,
		HasProvider: hasProvider,
		Chat: chat.Settings{
			Model:            cs.ActiveModel,
			Temperature:      cs.Temperature,
			MaxTokens:        cs.MaxTokens,
			TopP:             cs.TopP,
			FrequencyPenalty: cs.FrequencyPenalty,
			PresencePenalty:  cs.PresencePenalty,
			SystemPrompt:     cs.SystemPrompt,
		},
		Scene: chat.SceneSettings{
			Enabled:        ig.Enabled,
			Provider:       imageProvider,
			HasProvider:    hasImageProvider,
			Frequency:      ig.Frequency,
			Style:          ig.Style,
			CustomStyle:    ig.CustomStylePrompt,
			NegativePrompt: ig.NegativePrompt,
		},
	}
}

// saveConfig writes the current settings back to disk, syncing the
// registry's provider lists first
func (a *App) saveConfig() error {
	a.config.Providers = a.registry.TextProviders()
	a.config.ImageGeneration.Providers = a.registry.ImageProviders()
	return utils.SaveConfig(a.configPath, a.config)
}

// Run starts the application main loop
func (a *App) Run() {
	a.window.ShowAndRun()
}

// Cleanup waits for background work and releases resources
func (a *App) Cleanup() {
	a.scenes.Wait()
}
