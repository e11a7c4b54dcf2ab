package cli

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/namkunwoo/workreport-front/internal/cli/formatter"
	"github.com/namkunwoo/workreport-front/internal/session"
	"github.com/namkunwoo/workreport-front/internal/workreport"
)

// appModel is the root bubbletea Model for the TUI.
// It manages a view stack and keeps the screen in step with the session:
// the dashboard exists exactly while a session does.
type appModel struct {
	state     *SharedState
	viewStack []View
	quitting  bool

	events      <-chan session.Event
	unsubscribe func()
}

func newAppModel(app *App) appModel {
	state := &SharedState{
		App:     app,
		Session: app.Session.Snapshot(),
	}
	events, unsubscribe := app.Session.Subscribe()
	m := appModel{state: state, events: events, unsubscribe: unsubscribe}

	if state.Session.State.Authenticated() {
		state.Board = state.newBoard()
		m.viewStack = []View{newDashboardView(state)}
	} else {
		m.viewStack = []View{newLoginView(state, "")}
	}
	return m
}

// activeView returns the top view on the stack, or nil.
func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

// setActiveView replaces the top of the view stack.
// If the stack is empty, this is a no-op.
func (m *appModel) setActiveView(v View) {
	if len(m.viewStack) > 0 {
		m.viewStack[len(m.viewStack)-1] = v
	}
}

// resetStack makes v the only view.
func (m *appModel) resetStack(v View) tea.Cmd {
	m.viewStack = []View{v}
	return v.Init()
}

// ── session sync ─────────────────────────────────────────────────────────────

// waitForSessionEvent blocks until the monitor publishes a snapshot.
// It returns nil once the subscription is cancelled.
func waitForSessionEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return sessionEventMsg{}
	}
}

// syncSession copies the monitor snapshot into the shared state and
// switches between the login screen and the dashboard when the session
// starts or ends.
func (m *appModel) syncSession() tea.Cmd {
	ev := m.state.App.Session.Snapshot()
	m.state.Session = ev
	authenticated := ev.State.Authenticated()

	switch {
	case authenticated && m.state.Board == nil:
		m.state.Board = m.state.newBoard()
		return m.resetStack(newDashboardView(m.state))

	case !authenticated && m.state.Board != nil:
		m.state.Board = nil
		reason := ""
		if session.IsForcedLogout(ev) {
			reason = "Your session has ended. Please log in again."
		}
		m.state.App.logger().Info("tui_session_ended", "state", ev.State.String())
		return m.resetStack(newLoginView(m.state, reason))
	}
	return nil
}

func (m *appModel) renew() tea.Cmd {
	if !m.state.Session.State.Authenticated() {
		return nil
	}
	mon := m.state.App.Session
	return func() tea.Msg {
		return renewDoneMsg{err: mon.Renew(context.Background())}
	}
}

func (m *appModel) logout() tea.Cmd {
	m.state.App.Session.Logout()
	return m.syncSession()
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m appModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if v := m.activeView(); v != nil {
		cmds = append(cmds, v.Init())
	}
	cmds = append(cmds, waitForSessionEvent(m.events))
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		// Forward to active view
		if v := m.activeView(); v != nil {
			updated, cmd := v.Update(msg)
			m.setActiveView(updated.(View))
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Navigation messages from views
	case pushViewMsg:
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()

	case refreshViewMsg:
		// Broadcast to ALL views in the stack so underlying views pick up
		// board changes made by the forms above them.
		var cmds []tea.Cmd
		for i, v := range m.viewStack {
			updated, cmd := v.Update(msg)
			m.viewStack[i] = updated.(View)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case wizardCompleteMsg:
		// Atomically pop the wizard view and execute the follow-up command.
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, tea.Batch(msg.nextCmd, refreshViews)

	case sessionEventMsg:
		return m, tea.Batch(m.syncSession(), waitForSessionEvent(m.events))

	case loginDoneMsg:
		var cmd tea.Cmd
		if v := m.activeView(); v != nil {
			updated, c := v.Update(msg)
			m.setActiveView(updated.(View))
			cmd = c
		}
		return m, tea.Batch(cmd, m.syncSession())

	case renewDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, session.ErrInvalidTransition) {
			m.state.App.logger().Info("tui_renew_failed", "error", msg.err.Error())
		}
		return m, m.syncSession()

	case workreport.AuthFailedMsg:
		m.state.App.Session.Invalidate(msg.Err)
		return m, m.syncSession()
	}

	// Board results are applied whichever view is on top.
	var boardCmd tea.Cmd
	if m.state.Board != nil {
		boardCmd = m.state.Board.Update(msg)
	}

	// Forward to active view
	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, tea.Batch(boardCmd, cmd)
	}

	return m, boardCmd
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	// Renewal works from anywhere, forms included.
	if msg.Type == tea.KeyCtrlR {
		return m, m.renew()
	}

	v := m.activeView()
	captures := viewCapturesInput(v)

	// The expiry prompt takes its keys before the view does.
	if m.state.Session.PromptOpen && !captures {
		switch msg.String() {
		case "r":
			return m, m.renew()
		case "L":
			return m, m.logout()
		case "esc":
			m.state.App.Session.DismissPrompt()
			m.state.Session = m.state.App.Session.Snapshot()
			return m, nil
		}
	}

	// If active view captures input (has its own text input), forward directly.
	// This bypasses global keybindings so forms receive all characters
	// including 'q'.
	if captures {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	// Global keys
	switch {
	case msg.String() == "q":
		return m.quit()

	case msg.Type == tea.KeyEsc:
		// Pop view stack (go back)
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, nil
	}

	// Forward to active view
	if v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	return m, nil
}

// quit ends the program and drops the session subscription.
func (m appModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.unsubscribe()
	return m, tea.Quit
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string

	// Header
	sections = append(sections, m.renderHeader())

	if ev := m.state.Session; ev.PromptOpen && ev.State.Authenticated() {
		sections = append(sections, formatter.FormatSessionPrompt(ev))
	}

	// Content area
	if v := m.activeView(); v != nil {
		sections = append(sections, v.View())
	}

	// Status/shortcut bar
	sections = append(sections, m.renderStatusBar())

	result := strings.Join(sections, "\n")

	// Pad to terminal height to prevent stale line artifacts from
	// bubbletea's line-diff renderer in alt-screen mode.
	if m.state.Height > 0 {
		lines := strings.Count(result, "\n") + 1
		if lines < m.state.Height {
			result += strings.Repeat("\n", m.state.Height-lines)
		}
	}

	return result
}

// ── rendering helpers ────────────────────────────────────────────────────────

func (m *appModel) renderHeader() string {
	title := formatter.StylePurple.Render("workreport")

	// Breadcrumb from view stack
	var crumbs []string
	for _, v := range m.viewStack {
		if t := v.Title(); t != "" {
			crumbs = append(crumbs, t)
		}
	}
	breadcrumb := ""
	if len(crumbs) > 0 {
		breadcrumb = " " + formatter.Dim("›") + " " + formatter.Dim(strings.Join(crumbs, " › "))
	}

	header := title + breadcrumb
	if m.state.Session.State.Authenticated() {
		badge := formatter.FormatSessionBadge(m.state.Session)
		gap := max(m.state.Width-lipgloss.Width(header)-lipgloss.Width(badge), 2)
		header += strings.Repeat(" ", gap) + badge
	}

	sep := formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
	return header + "\n" + sep
}

func (m *appModel) renderStatusBar() string {
	var hints []string

	if v := m.activeView(); v != nil {
		for _, b := range v.ShortHelp() {
			hints = append(hints, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
		}
	}

	// Show navigation hints
	if len(m.viewStack) > 1 && !viewCapturesInput(m.activeView()) {
		hints = append(hints, formatter.Dim("esc: back"))
	}
	if m.state.Session.State.Authenticated() {
		hints = append(hints, formatter.Dim("ctrl+r: renew"))
	}

	bar := strings.Join(hints, "  ")
	sepStyle := lipgloss.NewStyle().Foreground(formatter.ColorDim)
	sep := sepStyle.Render(strings.Repeat("─", max(m.state.Width, 20)))
	return sep + "\n" + bar
}

// viewCapturesInput returns true if the active view has its own text input
// and should receive all key events (bypassing global keybindings like q/Esc).
func viewCapturesInput(v View) bool {
	if v == nil {
		return false
	}
	switch v.ID() {
	case ViewLogin, ViewForm, ViewConfirm:
		return true
	}
	return false
}
