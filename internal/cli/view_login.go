package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/cli/formatter"
)

// loginView is shown whenever there is no session. It owns the
// credentials form and reports why the previous session ended, if it
// was forced.
type loginView struct {
	state *SharedState
	form  *huh.Form

	username string
	password string

	reason     string
	err        error
	submitting bool
}

func newLoginView(state *SharedState, reason string) *loginView {
	v := &loginView{state: state, reason: reason}
	v.form = v.buildForm()
	return v
}

func (v *loginView) buildForm() *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&v.username).
				Validate(validateRequired("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&v.password).
				Validate(validateRequired("password")),
		),
	)
}

func (v *loginView) ID() ViewID    { return ViewLogin }
func (v *loginView) Title() string { return "Login" }

func (v *loginView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
		key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (v *loginView) Init() tea.Cmd {
	return v.form.Init()
}

// submit logs in with the entered credentials.
func (v *loginView) submit() tea.Cmd {
	v.submitting = true
	v.err = nil
	mon := v.state.App.Session
	username, password := strings.TrimSpace(v.username), v.password
	return func() tea.Msg {
		return loginDoneMsg{err: mon.Login(context.Background(), username, password)}
	}
}

func (v *loginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if done, ok := msg.(loginDoneMsg); ok {
		v.submitting = false
		if done.err == nil {
			return v, nil
		}
		v.err = done.err
		v.reason = ""
		v.password = ""
		v.form = v.buildForm()
		return v, v.form.Init()
	}

	if v.submitting {
		return v, nil
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}
	if v.form.State == huh.StateCompleted {
		return v, tea.Batch(cmd, v.submit())
	}
	return v, cmd
}

func (v *loginView) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(formatter.Header("Sign in"))
	b.WriteString("\n\n")
	if v.reason != "" {
		b.WriteString(formatter.StyleYellow.Render(v.reason))
		b.WriteString("\n\n")
	}
	if v.submitting {
		b.WriteString(formatter.Dim("Logging in…"))
		return b.String()
	}
	b.WriteString(v.form.View())
	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(formatter.StyleRed.Render(loginErrorText(v.err)))
	}
	return b.String()
}

func loginErrorText(err error) string {
	if api.IsAuthError(err) {
		return "Invalid username or password."
	}
	return "Login failed: " + err.Error()
}
