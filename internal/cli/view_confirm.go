package cli

import tea "github.com/charmbracelet/bubbletea"

// newConfirmView asks the board's pending question. Yes carries it out;
// No or escape leaves everything as it was.
func newConfirmView(state *SharedState) View {
	b := state.Board
	prompt := "Are you sure?"
	if p := b.Pending(); p != nil {
		prompt = p.Prompt()
	}

	var yes bool
	done := func() tea.Cmd {
		if yes {
			return b.Confirm()
		}
		b.Cancel()
		return nil
	}
	cancel := func() tea.Cmd {
		b.Cancel()
		return nil
	}

	v := newWizardView(state, "Confirm", wizardConfirm(prompt, &yes), done).onCancel(cancel)
	v.id = ViewConfirm
	return v
}
