package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/namkunwoo/workreport-front/internal/cli/formatter"
	"github.com/namkunwoo/workreport-front/internal/domain"
	"github.com/namkunwoo/workreport-front/internal/workreport"
)

// dashPane is the pane that receives movement keys.
type dashPane int

const (
	paneCalendar dashPane = iota
	paneList
)

// dashboardView is the home screen of the TUI.
// It shows a split-pane layout: the month calendar on the left and the
// reports of the selected date on the right.
type dashboardView struct {
	state  *SharedState
	focus  dashPane
	cursor time.Time // calendar keyboard position
	row    int       // report list selection

	// flash is a view-local hint, cleared on the next key.
	flash string
}

func newDashboardView(state *SharedState) *dashboardView {
	return &dashboardView{
		state:  state,
		cursor: domain.Day(state.App.now()),
	}
}

func (v *dashboardView) ID() ViewID    { return ViewDashboard }
func (v *dashboardView) Title() string { return "Reports" }

func (v *dashboardView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "pane")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "session")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (v *dashboardView) board() *workreport.Board {
	return v.state.Board
}

// Init loads the markers and opens today's reports.
func (v *dashboardView) Init() tea.Cmd {
	b := v.board()
	if b == nil {
		return nil
	}
	return tea.Batch(b.Init(), b.SelectDate(v.cursor))
}

// ── actions ──────────────────────────────────────────────────────────────────

// selectDate switches the list to date, asking first when a form holds
// unsaved input.
func (v *dashboardView) selectDate(date time.Time) tea.Cmd {
	b := v.board()
	cmd := b.SelectDate(date)
	if b.Pending() != nil {
		return pushView(newConfirmView(v.state))
	}
	v.row = 0
	return cmd
}

func (v *dashboardView) moveCursor(days int) {
	v.cursor = v.cursor.AddDate(0, 0, days)
	v.board().Calendar.SetMonth(v.cursor)
}

func (v *dashboardView) shiftMonth(months int) {
	b := v.board()
	if months < 0 {
		b.Calendar.PrevMonth()
	} else {
		b.Calendar.NextMonth()
	}
	v.cursor = b.Calendar.Month()
}

// selectedReport returns the report under the list cursor.
func (v *dashboardView) selectedReport() (domain.WorkReport, bool) {
	items := v.board().Reports.Items()
	if v.row < 0 || v.row >= len(items) {
		return domain.WorkReport{}, false
	}
	return items[v.row], true
}

func (v *dashboardView) openCreate() tea.Cmd {
	d, err := v.board().OpenCreate()
	if err != nil {
		v.flash = "Select a date first."
		return nil
	}
	return pushView(newReportFormView(v.state, d))
}

func (v *dashboardView) openEdit() tea.Cmd {
	r, ok := v.selectedReport()
	if !ok {
		v.flash = "No report selected."
		return nil
	}
	b := v.board()
	d, err := b.OpenEdit(r.ID)
	if errors.Is(err, workreport.ErrEditInProgress) && b.Pending() != nil {
		return pushView(newConfirmView(v.state))
	}
	if err != nil {
		v.flash = err.Error()
		return nil
	}
	return pushView(newReportFormView(v.state, d))
}

func (v *dashboardView) requestDelete() tea.Cmd {
	r, ok := v.selectedReport()
	if !ok {
		v.flash = "No report selected."
		return nil
	}
	if err := v.board().RequestDelete(r.ID); err != nil {
		v.flash = err.Error()
		return nil
	}
	return pushView(newConfirmView(v.state))
}

func (v *dashboardView) clampRow() {
	n := len(v.board().Reports.Items())
	if v.row >= n {
		v.row = max(n-1, 0)
	}
}

// ── update ───────────────────────────────────────────────────────────────────

func (v *dashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	b := v.board()
	if b == nil {
		return v, nil
	}

	switch msg := msg.(type) {
	case refreshViewMsg:
		v.clampRow()
		return v, nil

	case workreport.EditOpenedMsg:
		return v, pushView(newReportFormView(v.state, msg.Draft))

	case tea.KeyMsg:
		v.flash = ""
		if cmd, handled := v.handlePaneKey(msg); handled {
			return v, cmd
		}
		switch msg.String() {
		case "tab":
			if v.focus == paneCalendar {
				v.focus = paneList
			} else {
				v.focus = paneCalendar
			}
		case "[":
			v.shiftMonth(-1)
		case "]":
			v.shiftMonth(1)
		case "t":
			v.cursor = domain.Day(v.state.App.now())
			return v, v.selectDate(v.cursor)
		case "n":
			return v, v.openCreate()
		case "e":
			return v, v.openEdit()
		case "d":
			return v, v.requestDelete()
		case "x":
			return v, pushView(newExportView(v.state))
		case "i":
			return v, pushView(newImportView(v.state))
		case "r":
			b.ClearStatus()
			return v, b.Refresh()
		case "s":
			v.state.App.Session.OpenPrompt()
			v.state.Session = v.state.App.Session.Snapshot()
		}
		return v, nil
	}

	v.clampRow()
	return v, nil
}

// handlePaneKey applies movement keys to the focused pane.
func (v *dashboardView) handlePaneKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if v.focus == paneList {
		switch msg.String() {
		case "up", "k":
			if v.row > 0 {
				v.row--
			}
			return nil, true
		case "down", "j":
			if v.row < len(v.board().Reports.Items())-1 {
				v.row++
			}
			return nil, true
		case "enter":
			return v.openEdit(), true
		}
		return nil, false
	}

	switch msg.String() {
	case "left", "h":
		v.moveCursor(-1)
	case "right", "l":
		v.moveCursor(1)
	case "up", "k":
		v.moveCursor(-7)
	case "down", "j":
		v.moveCursor(7)
	case "enter", " ":
		return v.selectDate(v.cursor), true
	default:
		return nil, false
	}
	return nil, true
}

// ── view rendering ───────────────────────────────────────────────────────────

const dashLeftPaneWidth = 30

func (v *dashboardView) View() string {
	b := v.board()
	if b == nil {
		return ""
	}

	leftPane := v.renderCalendarPane()
	rightPane := v.renderListPane()

	var body string
	if v.state.Width < 80 {
		body = leftPane + "\n" + rightPane
	} else {
		rightWidth := max(v.state.Width-dashLeftPaneWidth-3, 20)
		leftCol := lipgloss.NewStyle().Width(dashLeftPaneWidth).Render(leftPane)
		divider := lipgloss.NewStyle().Foreground(formatter.ColorDim).Render("│")
		rightCol := lipgloss.NewStyle().Width(rightWidth).Render(rightPane)
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftCol, " "+divider+" ", rightCol)
	}

	// Keep the status line on screen when the detail runs long.
	if v.state.Height > 0 {
		lines := strings.Split(body, "\n")
		if limit := v.state.ContentHeight() - 1; len(lines) > limit {
			body = strings.Join(lines[:max(limit, 1)], "\n")
		}
	}

	return "\n" + body + "\n" + v.renderStatusLine()
}

func (v *dashboardView) renderCalendarPane() string {
	b := v.board()
	opts := formatter.CalendarOptions{
		Month:    b.Calendar.Month(),
		Markers:  b.Calendar.Visible(),
		Selected: b.Reports.Selected(),
		Today:    v.state.App.now(),
	}
	if v.focus == paneCalendar {
		opts.Cursor = v.cursor
	}
	return formatter.RenderCalendar(opts) + "\n" + formatter.Dim("[ ] month  t today")
}

func (v *dashboardView) renderListPane() string {
	b := v.board()
	list := b.Reports

	var sb strings.Builder
	if !list.HasSelection() {
		sb.WriteString(formatter.Dim("Select a date to see its reports."))
		return sb.String()
	}

	date := list.Selected()
	sb.WriteString(formatter.StyleHeader.Render(strings.ToUpper(formatter.HumanDate(date, v.state.App.now()))))
	sb.WriteString("  " + formatter.Dim(domain.FormatDate(date)) + "\n\n")

	if list.Loading() && len(list.Items()) == 0 {
		sb.WriteString(formatter.Dim("Loading..."))
		return sb.String()
	}

	selected := -1
	if v.focus == paneList {
		selected = v.row
	}
	sb.WriteString(formatter.FormatReportTable(list.Items(), selected))
	if len(list.Items()) > 0 {
		sb.WriteString("\n" + formatter.Dim(formatter.FormatReportTotal(list.Items())))
	}
	if err := list.LoadErr(); err != nil {
		sb.WriteString("\n" + formatter.Dim("Could not refresh: "+err.Error()))
	}

	if r, ok := v.selectedReport(); ok && v.focus == paneList {
		sb.WriteString("\n\n" + formatter.FormatReportDetail(r))
	}
	return sb.String()
}

func (v *dashboardView) renderStatusLine() string {
	b := v.board()
	switch {
	case v.flash != "":
		return formatter.StyleYellow.Render(v.flash)
	case b.Exporting():
		return formatter.Dim("Exporting…")
	case b.Importing():
		return formatter.Dim("Importing…")
	case b.Err() != nil:
		return formatter.StyleRed.Render(fmt.Sprintf("Error: %v", b.Err()))
	case b.Notice() != "":
		return formatter.StyleGreen.Render(b.Notice())
	}
	return ""
}
