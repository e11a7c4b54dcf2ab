package workreport

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// drain runs cmd and every command it produces, feeding results into b.
// Messages the board does not own are returned.
func drain(t *testing.T, b *Board, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("drain: too many commands")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch m := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, m...)
		case AuthFailedMsg:
			out = append(out, m)
		default:
			queue = append(queue, b.Update(m))
		}
	}
	return out
}
