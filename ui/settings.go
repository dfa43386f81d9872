package ui

import (
	"fmt"
	"strconv"
	"strings"

	"easytavern/llm"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"
)

// SettingsView represents the settings interface
type SettingsView struct {
	app *App

	// Text provider tab
	textList     *widget.List
	textIDs      []string
	selectedText string

	textNameEntry    *widget.Entry
	textKindSelect   *widget.Select
	textBaseURLEntry *widget.Entry
	textAPIKeyEntry  *widget.Entry
	textModelsEntry  *widget.Entry
	textEnabledCheck *widget.Check
	textEditForm     *fyne.Container

	// Image provider tab
	imageList     *widget.List
	imageIDs      []string
	selectedImage string

	imageNameEntry    *widget.Entry
	imageKindSelect   *widget.Select
	imageBaseURLEntry *widget.Entry
	imageAPIKeyEntry  *widget.Entry
	imageModelsEntry  *widget.Entry
	imageEnabledCheck *widget.Check
	imageEditForm     *fyne.Container
}

// NewSettingsView creates a new settings view
func NewSettingsView(app *App) *SettingsView {
	return &SettingsView{app: app}
}

// Build builds the settings view UI
func (sv *SettingsView) Build() fyne.CanvasObject {
	tabs := container.NewAppTabs(
		container.NewTabItem("Chat", sv.buildChatTab()),
		container.NewTabItem("Text Providers", sv.buildTextProvidersTab()),
		container.NewTabItem("Image Generation", sv.buildImageGenerationTab()),
		container.NewTabItem("Image Providers", sv.buildImageProvidersTab()),
		container.NewTabItem("Data", sv.buildDataTab()),
	)
	return tabs
}

// buildChatTab builds the chat defaults tab
func (sv *SettingsView) buildChatTab() fyne.CanvasObject {
	cs := &sv.app.config.ChatSettings

	providerSelect := widget.NewSelect(sv.textProviderNames(), nil)
	modelSelect := widget.NewSelect([]string{}, func(value string) {
		cs.ActiveModel = value
		sv.saveQuietly("active model")
	})

	providerSelect.OnChanged = func(name string) {
		provider, ok := sv.textProviderByName(name)
		if !ok {
			return
		}
		cs.ActiveProvider = provider.ID
		modelSelect.Options = provider.Models
		if len(provider.Models) > 0 {
			modelSelect.SetSelected(provider.Models[0])
		}
		modelSelect.Refresh()
		sv.saveQuietly("active provider")
	}

	if provider, ok := sv.app.registry.TextProvider(cs.ActiveProvider); ok {
		providerSelect.Selected = provider.Name
		modelSelect.Options = provider.Models
		modelSelect.Selected = cs.ActiveModel
	}

	systemPromptEntry := widget.NewMultiLineEntry()
	systemPromptEntry.Wrapping = fyne.TextWrapWord
	systemPromptEntry.SetMinRowsVisible(4)
	systemPromptEntry.SetText(cs.SystemPrompt)
	systemPromptEntry.OnChanged = func(value string) {
		cs.SystemPrompt = value
	}

	temperatureEntry := widget.NewEntry()
	temperatureEntry.SetText(strconv.FormatFloat(cs.Temperature, 'f', -1, 64))
	maxTokensEntry := widget.NewEntry()
	maxTokensEntry.SetText(strconv.Itoa(cs.MaxTokens))
	topPEntry := widget.NewEntry()
	topPEntry.SetText(strconv.FormatFloat(cs.TopP, 'f', -1, 64))
	freqPenaltyEntry := widget.NewEntry()
	freqPenaltyEntry.SetText(strconv.FormatFloat(cs.FrequencyPenalty, 'f', -1, 64))
	presPenaltyEntry := widget.NewEntry()
	presPenaltyEntry.SetText(strconv.FormatFloat(cs.PresencePenalty, 'f', -1, 64))

	saveButton := widget.NewButton("Save", func() {
		if v, err := strconv.ParseFloat(temperatureEntry.Text, 64); err == nil {
			cs.Temperature = v
		}
		if v, err := strconv.Atoi(maxTokensEntry.Text); err == nil {
			cs.MaxTokens = v
		}
		if v, err := strconv.ParseFloat(topPEntry.Text, 64); err == nil {
			cs.TopP = v
		}
		if v, err := strconv.ParseFloat(freqPenaltyEntry.Text, 64); err == nil {
			cs.FrequencyPenalty = v
		}
		if v, err := strconv.ParseFloat(presPenaltyEntry.Text, 64); err == nil {
			cs.PresencePenalty = v
		}
		if err := sv.app.saveConfig(); err != nil {
			dialog.ShowError(err, sv.app.window)
			return
		}
		dialog.ShowInformation("Settings", "Chat settings saved", sv.app.window)
	})
	saveButton.Importance = widget.HighImportance

	form := widget.NewForm(
		widget.NewFormItem("Provider", providerSelect),
		widget.NewFormItem("Model", modelSelect),
		widget.NewFormItem("System Prompt", systemPromptEntry),
		widget.NewFormItem("Temperature", temperatureEntry),
		widget.NewFormItem("Max Tokens", maxTokensEntry),
		widget.NewFormItem("Top P", topPEntry),
		widget.NewFormItem("Frequency Penalty", freqPenaltyEntry),
		widget.NewFormItem("Presence Penalty", presPenaltyEntry),
	)

	return container.NewVScroll(container.NewVBox(
		widget.NewLabel("Chat Settings"),
		widget.NewSeparator(),
		form,
		saveButton,
	))
}

// buildImageGenerationTab builds the scene image policy tab
func (sv *SettingsView) buildImageGenerationTab() fyne.CanvasObject {
	ig := &sv.app.config.ImageGeneration

	enabledCheck := widget.NewCheck("Generate scene images", func(checked bool) {
		ig.Enabled = checked
		sv.saveQuietly("image generation toggle")
	})
	enabledCheck.Checked = ig.Enabled

	providerSelect := widget.NewSelect(sv.imageProviderNames(), func(name string) {
		if provider, ok := sv.imageProviderByName(name); ok {
			ig.ActiveProvider = provider.ID
			sv.saveQuietly("image provider")
		}
	})
	if provider, ok := sv.app.registry.ImageProvider(ig.ActiveProvider); ok {
		providerSelect.Selected = provider.Name
	}

	// 0 turns the trigger off entirely
	frequencyLabel := widget.NewLabel(frequencyText(ig.Frequency))
	frequencySlider := widget.NewSlider(0, 10)
	frequencySlider.Step = 1
	frequencySlider.Value = float64(ig.Frequency)
	frequencySlider.OnChanged = func(value float64) {
		ig.Frequency = int(value)
		frequencyLabel.SetText(frequencyText(ig.Frequency))
		sv.saveQuietly("image frequency")
	}

	customStyleEntry := widget.NewMultiLineEntry()
	customStyleEntry.SetPlaceHolder("Custom style prompt prefix")
	customStyleEntry.SetText(ig.CustomStylePrompt)
	customStyleEntry.OnChanged = func(value string) {
		ig.CustomStylePrompt = value
	}
	customStyleEntry.Disable()

	styleSelect := widget.NewSelect([]string{
		string(llm.StyleGraphicNovel),
		string(llm.StyleRealisticAnime),
		string(llm.StylePhotorealism),
		string(llm.StyleUserDefined),
	}, func(value string) {
		ig.Style = llm.ImageStyle(value)
		if ig.Style == llm.StyleUserDefined {
			customStyleEntry.Enable()
		} else {
			customStyleEntry.Disable()
		}
		sv.saveQuietly("image style")
	})
	styleSelect.Selected = string(ig.Style)
	if ig.Style == llm.StyleUserDefined {
		customStyleEntry.Enable()
	}

	negativePromptEntry := widget.NewMultiLineEntry()
	negativePromptEntry.SetPlaceHolder("Negative prompt")
	negativePromptEntry.SetText(ig.NegativePrompt)
	negativePromptEntry.OnChanged = func(value string) {
		ig.NegativePrompt = value
	}

	saveButton := widget.NewButton("Save", func() {
		if err := sv.app.saveConfig(); err != nil {
			dialog.ShowError(err, sv.app.window)
			return
		}
		dialog.ShowInformation("Settings", "Image generation settings saved", sv.app.window)
	})
	saveButton.Importance = widget.HighImportance

	form := widget.NewForm(
		widget.NewFormItem("", enabledCheck),
		widget.NewFormItem("Provider", providerSelect),
		widget.NewFormItem("Frequency", container.NewVBox(frequencyLabel, frequencySlider)),
		widget.NewFormItem("Style", styleSelect),
		widget.NewFormItem("Custom Style", customStyleEntry),
		widget.NewFormItem("Negative Prompt", negativePromptEntry),
	)

	return container.NewVScroll(container.NewVBox(
		widget.NewLabel("Scene Image Generation"),
		widget.NewSeparator(),
		form,
		saveButton,
	))
}

func frequencyText(frequency int) string {
	if frequency == 0 {
		return "Frequency: off"
	}
	return fmt.Sprintf("Frequency: every %d turns", frequency)
}

// buildTextProvidersTab builds the text provider list and edit form
func (sv *SettingsView) buildTextProvidersTab() fyne.CanvasObject {
	sv.refreshTextIDs()

	sv.textList = widget.NewList(
		func() int {
			return len(sv.textIDs)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewLabel("Provider"), widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(sv.textIDs) {
				return
			}
			provider, ok := sv.app.registry.TextProvider(sv.textIDs[id])
			if !ok {
				return
			}
			box := obj.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(provider.Name)
			box.Objects[1].(*widget.Label).SetText(enabledTag(provider.Enabled))
		},
	)
	sv.textList.OnSelected = func(id widget.ListItemID) {
		if id < len(sv.textIDs) {
			sv.selectedText = sv.textIDs[id]
			sv.loadTextProvider(sv.textIDs[id])
		}
	}

	sv.buildTextEditForm()

	addButton := widget.NewButton("Add Provider", func() {
		sv.addTextProvider()
	})
	resetButton := widget.NewButton("Restore Defaults", func() {
		dialog.ShowConfirm("Restore Defaults", "Replace all text providers with the builtin catalog?", func(ok bool) {
			if !ok {
				return
			}
			sv.app.registry.ResetTextProviders()
			sv.selectedText = ""
			sv.refreshTextIDs()
			sv.textList.UnselectAll()
			sv.textList.Refresh()
			sv.saveQuietly("text provider defaults")
		}, sv.app.window)
	})

	leftPanel := container.NewBorder(
		widget.NewLabel("Text Providers"),
		container.NewVBox(addButton, resetButton),
		nil, nil,
		sv.textList,
	)

	split := container.NewHSplit(leftPanel, container.NewVScroll(sv.textEditForm))
	split.SetOffset(0.3)
	return split
}

func (sv *SettingsView) buildTextEditForm() {
	sv.textNameEntry = widget.NewEntry()
	sv.textNameEntry.SetPlaceHolder("Display name")

	sv.textKindSelect = widget.NewSelect([]string{
		string(llm.TextKindOpenAI),
		string(llm.TextKindAnthropic),
		string(llm.TextKindOllama),
		string(llm.TextKindKoboldCpp),
		string(llm.TextKindLlamaCpp),
		string(llm.TextKindOpenRouter),
		string(llm.TextKindLocal),
		string(llm.TextKindCustom),
	}, nil)

	sv.textBaseURLEntry = widget.NewEntry()
	sv.textBaseURLEntry.SetPlaceHolder("Base URL (e.g., https://api.openai.com/v1)")

	sv.textAPIKeyEntry = widget.NewPasswordEntry()
	sv.textAPIKeyEntry.SetPlaceHolder("API key (leave empty for local backends)")

	sv.textModelsEntry = widget.NewEntry()
	sv.textModelsEntry.SetPlaceHolder("Models (comma-separated)")

	sv.textEnabledCheck = widget.NewCheck("Enabled", nil)

	saveButton := widget.NewButton("Save Changes", func() {
		sv.saveTextProvider()
	})
	saveButton.Importance = widget.HighImportance

	deleteButton := widget.NewButton("Delete Provider", func() {
		sv.deleteTextProvider()
	})
	deleteButton.Importance = widget.DangerImportance

	sv.textEditForm = container.NewVBox(
		widget.NewLabel("Provider Configuration"),
		widget.NewSeparator(),
		widget.NewForm(
			widget.NewFormItem("Name", sv.textNameEntry),
			widget.NewFormItem("Type", sv.textKindSelect),
			widget.NewFormItem("Base URL", sv.textBaseURLEntry),
			widget.NewFormItem("API Key", sv.textAPIKeyEntry),
			widget.NewFormItem("Models", sv.textModelsEntry),
			widget.NewFormItem("", sv.textEnabledCheck),
		),
		container.NewHBox(saveButton, deleteButton),
	)
}

func (sv *SettingsView) loadTextProvider(id string) {
	provider, ok := sv.app.registry.TextProvider(id)
	if !ok {
		return
	}
	sv.textNameEntry.SetText(provider.Name)
	sv.textKindSelect.SetSelected(string(provider.Kind))
	sv.textBaseURLEntry.SetText(provider.BaseURL)
	sv.textAPIKeyEntry.SetText(provider.APIKey)
	sv.textModelsEntry.SetText(strings.Join(provider.Models, ", "))
	sv.textEnabledCheck.SetChecked(provider.Enabled)
}

func (sv *SettingsView) saveTextProvider() {
	if sv.selectedText == "" {
		return
	}
	provider, ok := sv.app.registry.TextProvider(sv.selectedText)
	if !ok {
		return
	}
	provider.Name = sv.textNameEntry.Text
	provider.Kind = llm.TextProviderKind(sv.textKindSelect.Selected)
	provider.BaseURL = sv.textBaseURLEntry.Text
	provider.APIKey = sv.textAPIKeyEntry.Text
	provider.Models = splitModels(sv.textModelsEntry.Text)
	provider.Enabled = sv.textEnabledCheck.Checked

	if err := sv.app.registry.UpdateTextProvider(provider); err != nil {
		dialog.ShowError(err, sv.app.window)
		return
	}
	if err := sv.app.saveConfig(); err != nil {
		dialog.ShowError(err, sv.app.window)
		return
	}
	sv.textList.Refresh()
	dialog.ShowInformation("Settings", "Provider saved", sv.app.window)
}

func (sv *SettingsView) addTextProvider() {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Provider name")
	dialog.ShowForm("Add Provider", "Add", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", nameEntry)},
		func(ok bool) {
			if !ok || nameEntry.Text == "" {
				return
			}
			provider := llm.TextProvider{
				ID:   uuid.NewString(),
				Name: nameEntry.Text,
				Kind: llm.TextKindCustom,
			}
			if err := sv.app.registry.AddTextProvider(provider); err != nil {
				dialog.ShowError(err, sv.app.window)
				return
			}
			sv.refreshTextIDs()
			sv.textList.Refresh()
			if err := sv.app.saveConfig(); err != nil {
				sv.app.logger.Error("Failed to save config: %v", err)
			}
		}, sv.app.window)
}

func (sv *SettingsView) deleteTextProvider() {
	if sv.selectedText == "" {
		return
	}
	id := sv.selectedText
	dialog.ShowConfirm("Delete Provider", "Delete this provider?", func(ok bool) {
		if !ok {
			return
		}
		if err := sv.app.registry.RemoveTextProvider(id); err != nil {
			dialog.ShowError(err, sv.app.window)
			return
		}
		sv.selectedText = ""
		sv.refreshTextIDs()
		sv.textList.UnselectAll()
		sv.textList.Refresh()
		if err := sv.app.saveConfig(); err != nil {
			sv.app.logger.Error("Failed to save config: %v", err)
		}
	}, sv.app.window)
}

// buildImageProvidersTab builds the image provider list and edit form
func (sv *SettingsView) buildImageProvidersTab() fyne.CanvasObject {
	sv.refreshImageIDs()

	sv.imageList = widget.NewList(
		func() int {
			return len(sv.imageIDs)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewLabel("Provider"), widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(sv.imageIDs) {
				return
			}
			provider, ok := sv.app.registry.ImageProvider(sv.imageIDs[id])
			if !ok {
				return
			}
			box := obj.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(provider.Name)
			box.Objects[1].(*widget.Label).SetText(enabledTag(provider.Enabled))
		},
	)
	sv.imageList.OnSelected = func(id widget.ListItemID) {
		if id < len(sv.imageIDs) {
			sv.selectedImage = sv.imageIDs[id]
			sv.loadImageProvider(sv.imageIDs[id])
		}
	}

	sv.buildImageEditForm()

	addButton := widget.NewButton("Add Provider", func() {
		sv.addImageProvider()
	})
	resetButton := widget.NewButton("Restore Defaults", func() {
		dialog.ShowConfirm("Restore Defaults", "Replace all image providers with the builtin catalog?", func(ok bool) {
			if !ok {
				return
			}
			sv.app.registry.ResetImageProviders()
			sv.selectedImage = ""
			sv.refreshImageIDs()
			sv.imageList.UnselectAll()
			sv.imageList.Refresh()
			sv.saveQuietly("image provider defaults")
		}, sv.app.window)
	})

	leftPanel := container.NewBorder(
		widget.NewLabel("Image Providers"),
		container.NewVBox(addButton, resetButton),
		nil, nil,
		sv.imageList,
	)

	split := container.NewHSplit(leftPanel, container.NewVScroll(sv.imageEditForm))
	split.SetOffset(0.3)
	return split
}

func (sv *SettingsView) buildImageEditForm() {
	sv.imageNameEntry = widget.NewEntry()
	sv.imageNameEntry.SetPlaceHolder("Display name")

	sv.imageKindSelect = widget.NewSelect([]string{
		string(llm.ImageKindAutomatic1111),
		string(llm.ImageKindOpenAI),
		string(llm.ImageKindPollinations),
		string(llm.ImageKindOpenRouter),
		string(llm.ImageKindChutes),
		string(llm.ImageKindMiniMax),
	}, nil)

	sv.imageBaseURLEntry = widget.NewEntry()
	sv.imageBaseURLEntry.SetPlaceHolder("Base URL (e.g., http://localhost:7860)")

	sv.imageAPIKeyEntry = widget.NewPasswordEntry()
	sv.imageAPIKeyEntry.SetPlaceHolder("API key (not needed for local backends)")

	sv.imageModelsEntry = widget.NewEntry()
	sv.imageModelsEntry.SetPlaceHolder("Models (comma-separated, first is the default)")

	sv.imageEnabledCheck = widget.NewCheck("Enabled", nil)

	saveButton := widget.NewButton("Save Changes", func() {
		sv.saveImageProvider()
	})
	saveButton.Importance = widget.HighImportance

	deleteButton := widget.NewButton("Delete Provider", func() {
		sv.deleteImageProvider()
	})
	deleteButton.Importance = widget.DangerImportance

	sv.imageEditForm = container.NewVBox(
		widget.NewLabel("Provider Configuration"),
		widget.NewSeparator(),
		widget.NewForm(
			widget.NewFormItem("Name", sv.imageNameEntry),
			widget.NewFormItem("Type", sv.imageKindSelect),
			widget.NewFormItem("Base URL", sv.imageBaseURLEntry),
			widget.NewFormItem("API Key", sv.imageAPIKeyEntry),
			widget.NewFormItem("Models", sv.imageModelsEntry),
			widget.NewFormItem("", sv.imageEnabledCheck),
		),
		container.NewHBox(saveButton, deleteButton),
	)
}

func (sv *SettingsView) loadImageProvider(id string) {
	provider, ok := sv.app.registry.ImageProvider(id)
	if !ok {
		return
	}
	sv.imageNameEntry.SetText(provider.Name)
	sv.imageKindSelect.SetSelected(string(provider.Kind))
	sv.imageBaseURLEntry.SetText(provider.BaseURL)
	sv.imageAPIKeyEntry.SetText(provider.APIKey)
	sv.imageModelsEntry.SetText(strings.Join(provider.Models, ", "))
	sv.imageEnabledCheck.SetChecked(provider.Enabled)
}

func (sv *SettingsView) saveImageProvider() {
	if sv.selectedImage == "" {
		return
	}
	provider, ok := sv.app.registry.ImageProvider(sv.selectedImage)
	if !ok {
		return
	}
	provider.Name = sv.imageNameEntry.Text
	provider.Kind = llm.ImageProviderKind(sv.imageKindSelect.Selected)
	provider.BaseURL = sv.imageBaseURLEntry.Text
	provider.APIKey = sv.imageAPIKeyEntry.Text
	provider.Models = splitModels(sv.imageModelsEntry.Text)
	provider.Enabled = sv.imageEnabledCheck.Checked

	if err := sv.app.registry.UpdateImageProvider(provider); err != nil {
		dialog.ShowError(err, sv.app.window)
		return
	}
	if err := sv.app.saveConfig(); err != nil {
		dialog.ShowError(err, sv.app.window)
		return
	}
	sv.imageList.Refresh()
	dialog.ShowInformation("Settings", "Provider saved", sv.app.window)
}

func (sv *SettingsView) addImageProvider() {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Provider name")
	dialog.ShowForm("Add Provider", "Add", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", nameEntry)},
		func(ok bool) {
			if !ok || nameEntry.Text == "" {
				return
			}
			provider := llm.ImageProvider{
				ID:   uuid.NewString(),
				Name: nameEntry.Text,
				Kind: llm.ImageKindAutomatic1111,
			}
			if err := sv.app.registry.AddImageProvider(provider); err != nil {
				dialog.ShowError(err, sv.app.window)
				return
			}
			sv.refreshImageIDs()
			sv.imageList.Refresh()
			if err := sv.app.saveConfig(); err != nil {
				sv.app.logger.Error("Failed to save config: %v", err)
			}
		}, sv.app.window)
}

func (sv *SettingsView) deleteImageProvider() {
	if sv.selectedImage == "" {
		return
	}
	id := sv.selectedImage
	dialog.ShowConfirm("Delete Provider", "Delete this provider?", func(ok bool) {
		if !ok {
			return
		}
		if err := sv.app.registry.RemoveImageProvider(id); err != nil {
			dialog.ShowError(err, sv.app.window)
			return
		}
		sv.selectedImage = ""
		sv.refreshImageIDs()
		sv.imageList.UnselectAll()
		sv.imageList.Refresh()
		if err := sv.app.saveConfig(); err != nil {
			sv.app.logger.Error("Failed to save config: %v", err)
		}
	}, sv.app.window)
}

// buildDataTab shows storage locations and database stats
func (sv *SettingsView) buildDataTab() fyne.CanvasObject {
	statsLabel := widget.NewLabel("")
	refreshStats := func() {
		stats, err := sv.app.db.GetStats()
		if err != nil {
			statsLabel.SetText(fmt.Sprintf("Failed to read stats: %v", err))
			return
		}
		statsLabel.SetText(fmt.Sprintf(
			"Conversations: %d\nMessages: %d\nGenerated images: %d",
			stats.ConversationCount, stats.MessageCount, stats.ImageCount,
		))
	}
	refreshStats()

	refreshButton := widget.NewButton("Refresh", refreshStats)
	vacuumButton := widget.NewButton("Compact Database", func() {
		if err := sv.app.db.Vacuum(); err != nil {
			dialog.ShowError(err, sv.app.window)
			return
		}
		refreshStats()
	})

	return container.NewVScroll(container.NewVBox(
		widget.NewLabel("Data"),
		widget.NewSeparator(),
		widget.NewLabel("Config: "+sv.app.configPath),
		widget.NewLabel("Data directory: "+sv.app.config.Data.DataDir),
		widget.NewSeparator(),
		statsLabel,
		container.NewHBox(refreshButton, vacuumButton),
	))
}

func (sv *SettingsView) refreshTextIDs() {
	providers := sv.app.registry.TextProviders()
	sv.textIDs = make([]string, 0, len(providers))
	for _, p := range providers {
		sv.textIDs = append(sv.textIDs, p.ID)
	}
}

func (sv *SettingsView) refreshImageIDs() {
	providers := sv.app.registry.ImageProviders()
	sv.imageIDs = make([]string, 0, len(providers))
	for _, p := range providers {
		sv.imageIDs = append(sv.imageIDs, p.ID)
	}
}

func (sv *SettingsView) textProviderNames() []string {
	providers := sv.app.registry.TextProviders()
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}
	return names
}

func (sv *SettingsView) textProviderByName(name string) (llm.TextProvider, bool) {
	for _, p := range sv.app.registry.TextProviders() {
		if p.Name == name {
			return p, true
		}
	}
	return llm.TextProvider{}, false
}

func (sv *SettingsView) imageProviderNames() []string {
	providers := sv.app.registry.ImageProviders()
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}
	return names
}

func (sv *SettingsView) imageProviderByName(name string) (llm.ImageProvider, bool) {
	for _, p := range sv.app.registry.ImageProviders() {
		if p.Name == name {
			return p, true
		}
	}
	return llm.ImageProvider{}, false
}

func (sv *SettingsView) saveQuietly(what string) {
	if err := sv.app.saveConfig(); err != nil {
		sv.app.logger.Error("Failed to save %s: %v", what, err)
	}
}

func enabledTag(enabled bool) string {
	if enabled {
		return "[Enabled]"
	}
	return "[Disabled]"
}

func splitModels(text string) []string {
	parts := strings.Split(text, ",")
	models := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			models = append(models, trimmed)
		}
	}
	return models
}
