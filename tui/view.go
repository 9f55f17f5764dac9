package tui

import (
	"fmt"
	"strings"

	"ai_content_optimizer/form"
	"ai_content_optimizer/options"
	"ai_content_optimizer/render"
	"ai_content_optimizer/shell"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(render.TitleStyle.Render(TextHeader))
	b.WriteString("\n\n")

	st := m.Shell.State()
	f := m.Shell.Form()

	switch st := st.(type) {
	case shell.Loading:
		b.WriteString(render.InfoStyle.Render(render.TextThinking))
		b.WriteString("\n\n")
		b.WriteString(render.InfoStyle.Render(TextLoadingHelp))
		return b.String()
	case shell.Failed:
		b.WriteString(render.ErrorStyle.Render("Error: " + st.Message))
		b.WriteString("\n\n")
	}

	if m.Screen == ScreenResults && len(m.items) > 0 {
		b.WriteString(m.resultsView())
		b.WriteString("\n")
		b.WriteString(render.InfoStyle.Render(TextResultsHelp))
		return b.String()
	}

	b.WriteString(m.formView(f))
	b.WriteString("\n")
	b.WriteString(render.InfoStyle.Render(TextFormHelp))
	return b.String()
}

func (m Model) formView(f form.Form) string {
	var b strings.Builder

	line := func(row int, text string) {
		if row == m.row {
			b.WriteString(render.SelectedStyle.Render("> " + text))
		} else {
			b.WriteString("  " + text)
		}
		b.WriteString("\n")
	}

	url := f.URL
	if url == "" {
		url = render.InfoStyle.Render("https://example.com/your-article")
	}
	line(rowURL, "Article URL: "+url)
	line(rowLanguage, "Output Language: "+f.Language.Label())
	line(rowTone, "Summarization Style: "+string(f.Tone))
	for i, l := range options.Lengths() {
		box := "[ ]"
		if f.Lengths.Has(l) {
			box = "[x]"
		}
		line(rowFirstLength+i, box+" "+l.Label())
	}

	sub := f.Submit(false)
	b.WriteString("\n")
	if sub.Disabled {
		b.WriteString(render.InfoStyle.Render(sub.Label))
	} else {
		b.WriteString(render.HeadingStyle.Render("[enter] " + sub.Label))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) resultsView() string {
	var b strings.Builder
	now := m.now()
	section := ""

	for i, it := range m.items {
		if it.Section != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = it.Section
			b.WriteString(render.HeadingStyle.Render(section))
			b.WriteString("\n")
		}

		label := m.copied[i].Label(now)
		text := it.Text
		if it.Label != "" {
			text = it.Label + " " + text
		}
		row := fmt.Sprintf("%s [%s]", text, label)
		if i == m.cursor {
			b.WriteString(render.SelectedStyle.Render("> " + row))
		} else {
			b.WriteString("  " + row)
		}
		b.WriteString("\n")
	}
	return b.String()
}
