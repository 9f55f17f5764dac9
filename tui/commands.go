package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ai_content_optimizer/render"
	"ai_content_optimizer/shell"
)

// submit runs one generation through the shell.
func submit(sh *shell.Shell, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		st, err := sh.Submit(ctx)
		return SubmittedMsg{State: st, Err: err}
	}
}

// expireCopy fires after the copied indicator should revert.
func expireCopy(index int) tea.Cmd {
	return tea.Tick(render.CopiedDuration, func(time.Time) tea.Msg {
		return CopyExpiredMsg{Index: index}
	})
}
