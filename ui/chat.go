package ui

import (
	"context"
	"fmt"

	"easytavern/chat"
	"easytavern/db"
	"easytavern/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ChatView is the conversation tab: message history, input area and an
// inline error banner
type ChatView struct {
	app *App

	conversation *db.Conversation
	engine       *chat.Engine

	conversationSelect *widget.Select
	conversations      []*db.Conversation
	messagesContainer  *fyne.Container
	messagesScroll     *container.Scroll
	inputEntry         *widget.Entry
	sendButton         *widget.Button
	errorBanner        *widget.Label
}

// NewChatView creates the chat view
func NewChatView(app *App) *ChatView {
	return &ChatView{app: app}
}

// Build builds the chat view UI
func (cv *ChatView) Build() fyne.CanvasObject {
	cv.messagesContainer = container.NewVBox()
	cv.messagesScroll = container.NewScroll(cv.messagesContainer)
	cv.messagesScroll.SetMinSize(fyne.NewSize(600, 400))

	cv.errorBanner = widget.NewLabel("")
	cv.errorBanner.Importance = widget.DangerImportance
	cv.errorBanner.Hide()

	cv.inputEntry = widget.NewMultiLineEntry()
	cv.inputEntry.Wrapping = fyne.TextWrapBreak
	cv.inputEntry.SetPlaceHolder("Type a message...")
	cv.inputEntry.SetMinRowsVisible(3)

	cv.sendButton = widget.NewButton("Send", func() {
		cv.sendMessage()
	})

	newButton := widget.NewButton("New Chat", func() {
		cv.createConversation()
	})
	clearButton := widget.NewButton("Clear", func() {
		if cv.engine != nil {
			cv.engine.Clear()
			cv.refreshMessages()
		}
	})

	cv.conversationSelect = widget.NewSelect([]string{}, func(title string) {
		cv.selectConversationByTitle(title)
	})
	cv.conversationSelect.PlaceHolder = "Select a conversation"

	topBar := container.NewBorder(nil, nil, nil,
		container.NewHBox(newButton, clearButton),
		cv.conversationSelect,
	)

	inputContainer := container.NewBorder(nil, nil, nil, cv.sendButton, cv.inputEntry)
	bottom := container.NewVBox(cv.errorBanner, inputContainer)

	cv.reloadConversations()

	return container.NewBorder(topBar, bottom, nil, nil, cv.messagesScroll)
}

// reloadConversations refreshes the conversation picker from the database
func (cv *ChatView) reloadConversations() {
	conversations, err := cv.app.db.ListConversations()
	if err != nil {
		cv.app.logger.Error("Failed to list conversations: %v", err)
		return
	}
	cv.conversations = conversations

	titles := make([]string, 0, len(conversations))
	for _, c := range conversations {
		titles = append(titles, c.Title)
	}
	cv.conversationSelect.Options = titles
	cv.conversationSelect.Refresh()

	// Reopen the last active conversation, or fall back to the newest
	if cv.conversation == nil && len(conversations) > 0 {
		lastID, _ := cv.app.db.GetSetting(lastConversationKey)
		target := conversations[0]
		for _, c := range conversations {
			if c.ID == lastID {
				target = c
				break
			}
		}
		cv.setConversation(target)
	}
}

func (cv *ChatView) selectConversationByTitle(title string) {
	for _, c := range cv.conversations {
		if c.Title == title {
			cv.setConversation(c)
			return
		}
	}
}

func (cv *ChatView) setConversation(conv *db.Conversation) {
	cv.conversation = conv
	cv.engine = cv.app.engineFor(conv)
	cv.engine.SetOnChange(func() {
		fyne.Do(func() {
			cv.refreshMessages()
		})
	})
	cv.conversationSelect.SetSelected(conv.Title)
	if err := cv.app.db.SetSetting(lastConversationKey, conv.ID); err != nil {
		cv.app.logger.Error("Failed to remember conversation: %v", err)
	}
	cv.refreshMessages()
}

// createConversation starts a fresh conversation
func (cv *ChatView) createConversation() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Conversation title")
	dialog.ShowForm("New Chat", "Create", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Title", entry)},
		func(ok bool) {
			if !ok {
				return
			}
			title := entry.Text
			if title == "" {
				title = "New Chat"
			}
			conv, err := cv.app.db.CreateConversation(title, utils.ChatFolderName(title))
			if err != nil {
				cv.app.logger.Error("Failed to create conversation: %v", err)
				dialog.ShowError(err, cv.app.window)
				return
			}
			cv.reloadConversations()
			cv.setConversation(conv)
		}, cv.app.window)
}

// sendMessage dispatches the entry content as a user turn
func (cv *ChatView) sendMessage() {
	content := cv.inputEntry.Text
	if content == "" {
		return
	}
	if cv.engine == nil {
		cv.showError("Create a conversation first")
		return
	}
	if len(cv.app.registry.EnabledTextProviders()) == 0 {
		cv.showError("No provider enabled. Enable at least one API provider in settings.")
		return
	}
	if cv.engine.State() == chat.StateSending {
		return
	}

	cv.inputEntry.SetText("")
	cv.hideError()
	cv.sendButton.Disable()

	utils.SafeGo(cv.app.logger, "chat send", func() {
		err := cv.engine.Send(context.Background(), content)
		fyne.Do(func() {
			cv.sendButton.Enable()
			if err != nil {
				cv.showError(cv.engine.ErrorText())
			}
			cv.refreshMessages()
		})
	})
}

// refreshMessages re-renders the message history
func (cv *ChatView) refreshMessages() {
	cv.messagesContainer.Objects = nil

	if cv.engine != nil {
		for _, msg := range cv.engine.Messages() {
			cv.messagesContainer.Add(cv.buildMessageRow(msg))
		}
	}

	cv.messagesContainer.Refresh()
	cv.messagesScroll.ScrollToBottom()
}

// buildMessageRow renders one message with edit and delete actions
func (cv *ChatView) buildMessageRow(msg chat.Message) fyne.CanvasObject {
	header := msg.Role
	if msg.Model != "" {
		header = fmt.Sprintf("%s (%s)", msg.Role, msg.Model)
	}
	headerLabel := widget.NewLabelWithStyle(header, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	body := widget.NewRichTextFromMarkdown(msg.Content)
	body.Wrapping = fyne.TextWrapWord

	editButton := widget.NewButton("Edit", func() {
		cv.editMessage(msg)
	})
	deleteButton := widget.NewButton("Delete", func() {
		cv.engine.DeleteMessage(msg.ID)
		cv.refreshMessages()
	})

	actions := container.NewHBox(headerLabel, editButton, deleteButton)
	return container.NewVBox(actions, body, widget.NewSeparator())
}

func (cv *ChatView) editMessage(msg chat.Message) {
	entry := widget.NewMultiLineEntry()
	entry.SetText(msg.Content)
	dialog.ShowForm("Edit Message", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Content", entry)},
		func(ok bool) {
			if !ok {
				return
			}
			cv.engine.EditMessage(msg.ID, entry.Text)
			cv.refreshMessages()
		}, cv.app.window)
}

func (cv *ChatView) showError(text string) {
	cv.errorBanner.SetText(text)
	cv.errorBanner.Show()
}

func (cv *ChatView) hideError() {
	cv.errorBanner.SetText("")
	cv.errorBanner.Hide()
}
