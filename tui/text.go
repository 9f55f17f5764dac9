package tui

// UI Text Constants
const (
	TextHeader      = "AI Content Optimizer"
	TextFormHelp    = "↑/↓ move | type to edit URL | space/←/→ change | enter generate | q quit"
	TextResultsHelp = "↑/↓ move | c or enter copy | esc edit form | q quit"
	TextLoadingHelp = "Press 'q' or Ctrl+C to quit"
)
