package tui

import "ai_content_optimizer/shell"

// SubmittedMsg carries the settled shell state after a submission.
type SubmittedMsg struct {
	State shell.State
	Err   error
}

// CopyExpiredMsg asks for a redraw once a "Copied" acknowledgment has run out.
type CopyExpiredMsg struct {
	Index int
}
