package cli

import tea "github.com/charmbracelet/bubbletea"

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// wizardCompleteMsg is sent when a wizard form completes or is cancelled.
// The appModel handles it atomically: pop the wizard view, then run nextCmd.
type wizardCompleteMsg struct {
	nextCmd tea.Cmd
}

// refreshViewMsg is broadcast to every view on the stack after the board
// changed underneath them.
type refreshViewMsg struct{}

// sessionEventMsg signals that the session monitor published a snapshot.
// It drives the header countdown and session sync.
type sessionEventMsg struct{}

// loginDoneMsg carries the result of a login attempt.
type loginDoneMsg struct {
	err error
}

// renewDoneMsg carries the result of a renewal.
type renewDoneMsg struct {
	err error
}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

func refreshViews() tea.Msg { return refreshViewMsg{} }
