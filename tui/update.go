package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"ai_content_optimizer/options"
	"ai_content_optimizer/render"
	"ai_content_optimizer/shell"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case SubmittedMsg:
		return m.handleSubmitted(msg)
	case CopyExpiredMsg:
		// redraw only
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.Shell.Loading() {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.Screen == ScreenResults {
		return m.handleResultsKey(msg)
	}
	return m.handleFormKey(msg)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.Shell.Form()

	switch msg.String() {
	case "up", "shift+tab":
		m.row = (m.row + formRows - 1) % formRows
		return m, nil
	case "down", "tab":
		m.row = (m.row + 1) % formRows
		return m, nil
	case "enter":
		if f.Submit(false).Disabled {
			return m, nil
		}
		m.items = nil
		m.cursor = 0
		return m, submit(m.Shell, m.Timeout)
	case "backspace":
		if m.row == rowURL && f.URL != "" {
			r := []rune(f.URL)
			f.URL = string(r[:len(r)-1])
			m.Shell.SetForm(f)
		}
		return m, nil
	case "esc":
		if len(m.items) > 0 {
			m.Screen = ScreenResults
		}
		return m, nil
	}

	if m.row == rowURL {
		if msg.Type == tea.KeyRunes {
			f.URL += string(msg.Runes)
			m.Shell.SetForm(f)
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case " ", "left", "right":
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		switch {
		case m.row == rowLanguage:
			f.Language = cycle(options.Languages(), f.Language, step)
			m.Shell.SetForm(f)
		case m.row == rowTone:
			f.Tone = cycle(options.Tones(), f.Tone, step)
			m.Shell.SetForm(f)
		case m.row >= rowFirstLength:
			m.Shell.ToggleLength(options.Lengths()[m.row-rowFirstLength])
		}
	}
	return m, nil
}

func cycle[T comparable](choices []options.Choice[T], cur T, step int) T {
	for i, c := range choices {
		if c.Value == cur {
			return choices[(i+step+len(choices))%len(choices)].Value
		}
	}
	return choices[0].Value
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "esc", "e":
		m.Screen = ScreenForm
	case "c", "enter":
		return m.copyCurrent()
	}
	return m, nil
}

func (m Model) copyCurrent() (tea.Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.items) || m.Clipboard == nil {
		return m, nil
	}
	ind := m.copied[m.cursor]
	if err := ind.Copy(m.items[m.cursor].Text, m.Clipboard, m.now()); err != nil {
		m.Log.Error("Failed to write clipboard",
			"error", err)

		return m, nil
	}
	m.copied[m.cursor] = ind
	return m, expireCopy(m.cursor)
}

func (m Model) handleSubmitted(msg SubmittedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Err, shell.ErrBusy) {
		return m, nil
	}
	if st, ok := msg.State.(shell.Success); ok {
		m.items = itemsFor(render.NewView(st.Result))
		m.copied = make(map[int]render.CopyIndicator)
		m.cursor = 0
		m.Screen = ScreenResults
	}
	return m, nil
}
