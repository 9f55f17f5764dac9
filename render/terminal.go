package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorPrimary = "#7D56F4"
	colorSuccess = "#04B575"
	colorError   = "#FF0000"
	colorInfo    = "#626262"
	colorTag     = "#A5B4FC"
	colorBorder  = "#874BFD"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	HeadingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorSuccess))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	TagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorTag))

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color(colorPrimary))
)

// Terminal renders v as styled cards. A width of zero leaves text unwrapped.
func Terminal(v View, width int) string {
	card := CardStyle
	if width > 4 {
		card = card.Width(width - 4)
	}

	var sections []string
	if len(v.Summaries) > 0 {
		var b strings.Builder
		b.WriteString(HeadingStyle.Render("Generated Summaries"))
		for _, s := range v.Summaries {
			b.WriteString("\n\n")
			b.WriteString(TitleStyle.Render(s.Label))
			b.WriteString("\n")
			b.WriteString(s.Text)
		}
		sections = append(sections, card.Render(b.String()))
	}

	var titles strings.Builder
	titles.WriteString(HeadingStyle.Render("Suggested Titles"))
	for i, t := range v.Titles {
		titles.WriteString(fmt.Sprintf("\n%d. %s", i+1, t))
	}
	sections = append(sections, card.Render(titles.String()))

	styled := make([]string, 0, len(v.Tags))
	for _, t := range v.Tags {
		styled = append(styled, TagStyle.Render(t))
	}
	sections = append(sections, card.Render(
		HeadingStyle.Render("Suggested Tags & Keywords")+"\n"+strings.Join(styled, "  "),
	))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
