package ui

import (
	"encoding/json"
	"fmt"

	"easytavern/debuglog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// DebugView shows the in-memory request/response log, newest first
type DebugView struct {
	app *App

	events []debuglog.Event
	list   *widget.List
}

// NewDebugView creates the debug log view
func NewDebugView(app *App) *DebugView {
	return &DebugView{app: app}
}

// Build builds the debug view UI
func (dv *DebugView) Build() fyne.CanvasObject {
	dv.list = widget.NewList(
		func() int {
			return len(dv.events)
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("event")
			label.Wrapping = fyne.TextWrapWord
			return label
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(dv.events) {
				return
			}
			obj.(*widget.Label).SetText(formatEvent(dv.events[id]))
		},
	)

	refreshButton := widget.NewButton("Refresh", func() {
		dv.Refresh()
	})
	clearButton := widget.NewButton("Clear", func() {
		dv.app.sink.Clear()
		dv.Refresh()
	})

	toolbar := container.NewHBox(refreshButton, clearButton)

	dv.Refresh()

	return container.NewBorder(toolbar, nil, nil, nil, dv.list)
}

// Refresh reloads events from the sink, newest first
func (dv *DebugView) Refresh() {
	events := dv.app.sink.List()
	reversed := make([]debuglog.Event, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}
	dv.events = reversed
	dv.list.Refresh()
}

func formatEvent(e debuglog.Event) string {
	header := fmt.Sprintf("[%s] %s/%s", e.Timestamp.Format("15:04:05"), e.Kind, e.Phase)
	if e.Provider != "" {
		header += " " + e.Provider
	}
	if e.Model != "" {
		header += " (" + e.Model + ")"
	}
	return header + "\n" + formatContent(e.Content)
}

// formatContent renders event payloads; structured payloads are shown as JSON
func formatContent(content interface{}) string {
	switch v := content.(type) {
	case string:
		return v
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
