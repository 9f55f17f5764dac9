// Package tui is a terminal front end over the same shell the web server uses.
package tui

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ai_content_optimizer/options"
	"ai_content_optimizer/render"
	"ai_content_optimizer/shell"
)

// Screen is the part of the UI that has focus.
type Screen string

const (
	ScreenForm    Screen = "form"
	ScreenResults Screen = "results"
)

// form rows, top to bottom
const (
	rowURL = iota
	rowLanguage
	rowTone
	rowFirstLength
)

var formRows = rowFirstLength + len(options.Lengths())

// CopyItem is one copyable field of a result.
type CopyItem struct {
	Section string
	Label   string
	Text    string
}

// Model is the bubbletea model.
type Model struct {
	Shell     *shell.Shell
	Clipboard render.Clipboard
	Log       *slog.Logger
	Timeout   time.Duration

	Screen Screen
	row    int
	cursor int
	items  []CopyItem
	copied map[int]render.CopyIndicator
	width  int
	now    func() time.Time
}

// NewModel creates a model over sh. Copy actions go to cb.
func NewModel(sh *shell.Shell, cb render.Clipboard, log *slog.Logger, timeout time.Duration) Model {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return Model{
		Shell:     sh,
		Clipboard: cb,
		Log:       log,
		Timeout:   timeout,
		Screen:    ScreenForm,
		copied:    make(map[int]render.CopyIndicator),
		now:       time.Now,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return nil
}

// Items lists the copyable fields shown on the results screen.
func (m Model) Items() []CopyItem {
	return m.items
}

func itemsFor(v render.View) []CopyItem {
	var items []CopyItem
	for _, s := range v.Summaries {
		items = append(items, CopyItem{Section: "Generated Summaries", Label: s.Label, Text: s.Text})
	}
	for i, t := range v.Titles {
		items = append(items, CopyItem{Section: "Suggested Titles", Label: fmt.Sprintf("%d.", i+1), Text: t})
	}
	for _, t := range v.Tags {
		items = append(items, CopyItem{Section: "Suggested Tags & Keywords", Text: t})
	}
	return items
}
