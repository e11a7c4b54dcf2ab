package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
	"github.com/namkunwoo/workreport-front/internal/session"
	"github.com/namkunwoo/workreport-front/internal/testutil"
	"github.com/namkunwoo/workreport-front/internal/workreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillDraft makes d a valid report.
func fillDraft(d *workreport.Draft) {
	d.Fields.ClientName = "Hanbit Bank"
	d.Fields.ProjectName = "Core"
	d.Fields.WorkType = domain.WorkTypes[0].Value
	d.Fields.WorkHours = "4"
	d.Fields.WorkDescription = "Batch tuning"
}

// =============================================================================
// Startup
// =============================================================================

func TestTUI_StartsOnLoginWithoutSession(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	assert.Equal(t, ViewLogin, d.ActiveViewID())
	assert.Nil(t, d.State().Board)
	assert.Contains(t, d.View(), "SIGN IN")
	assert.Equal(t, 0, env.reports.TotalCalls(), "no report requests without a session")
}

func TestTUI_StartsOnDashboardWithSession(t *testing.T) {
	env := testApp(t, testutil.NewTestReport("2026-03-10", testutil.WithClient("Hanbit Bank"))).loggedIn(t)
	d := NewTestDriver(t, env.app)

	require.Equal(t, ViewDashboard, d.ActiveViewID())
	b := d.State().Board
	require.NotNil(t, b)
	assert.True(t, b.Calendar.Loaded())
	assert.True(t, domain.SameDay(testNow, b.Reports.Selected()), "today is selected on open")
	assert.Len(t, b.Reports.Items(), 1)

	view := d.View()
	assert.Contains(t, view, "Hanbit Bank")
	assert.Contains(t, view, "Kim Minji")
	assert.Contains(t, view, "30:00")
}

// =============================================================================
// Login
// =============================================================================

func TestTUI_LoginSwitchesToDashboard(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	d.LoginAs("kim", "pw")

	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	assert.Equal(t, 1, d.ViewStackLen())
	require.NotNil(t, d.State().Board)
	assert.Equal(t, session.StateActive, d.State().Session.State)
	assert.Equal(t, 1, env.reports.Calls("DatesWithReports"))
}

func TestTUI_LoginWrongPasswordStaysOnLogin(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	d.LoginAs("kim", "wrong")

	assert.Equal(t, ViewLogin, d.ActiveViewID())
	assert.Contains(t, d.View(), "Invalid username or password.")
	assert.Equal(t, session.StateUnauthenticated, env.app.Session.State())
}

func TestTUI_LoginViewCapturesQ(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('q')
	assert.False(t, d.IsQuitting(), "q is typed into the username field")
	assert.Equal(t, ViewLogin, d.ActiveViewID())
}

// =============================================================================
// Quit
// =============================================================================

func TestTUI_QuitFromDashboard(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('q')
	assert.True(t, d.IsQuitting())
}

func TestTUI_QuitCancelsSessionSubscription(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)
	events := d.appModel().events

	d.PressKey('q')

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, waitForSessionEvent(events)())
}

func TestTUI_CtrlCQuitsFromLogin(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	d.PressCtrlC()
	assert.True(t, d.IsQuitting())
}

// =============================================================================
// Session lifecycle
// =============================================================================

func TestTUI_ExpiryReturnsToLoginWithReason(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)
	require.Equal(t, ViewDashboard, d.ActiveViewID())

	env.clock.Advance(31 * time.Minute)
	env.app.Session.Tick()
	d.AwaitSessionEvent()

	assert.Equal(t, ViewLogin, d.ActiveViewID())
	assert.Nil(t, d.State().Board)
	assert.Contains(t, d.View(), "Your session has ended. Please log in again.")
}

func TestTUI_NoSessionWakeupsWithoutEvents(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)
	require.Equal(t, ViewLogin, d.ActiveViewID())

	// Only the snapshot delivered on subscribe; nothing polls after that.
	assert.Equal(t, 1, d.DeliveredOfType(sessionEventMsg{}))
	assert.False(t, d.DeliverLate(sessionEventMsg{}, 50*time.Millisecond))
	assert.Equal(t, 1, d.DeliveredOfType(sessionEventMsg{}))
}

func TestTUI_SessionEventRefreshesCountdown(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)
	before := d.State().Session.ExpiresAt

	env.clock.Advance(2 * time.Minute)
	require.NoError(t, env.app.Session.Renew(context.Background()))
	d.AwaitSessionEvent()

	assert.True(t, d.State().Session.ExpiresAt.After(before))
	assert.Equal(t, ViewDashboard, d.ActiveViewID())
}

func TestTUI_ExpiryDropsOpenForms(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('n')
	require.Equal(t, ViewForm, d.ActiveViewID())

	env.clock.Advance(31 * time.Minute)
	env.app.Session.Tick()
	d.AwaitSessionEvent()

	assert.Equal(t, []ViewID{ViewLogin}, d.ViewStackIDs())
}

func TestTUI_WarningPromptRenew(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	env.clock.Advance(26 * time.Minute)
	env.app.Session.Tick()
	d.AwaitSessionEvent()

	require.True(t, d.State().Session.PromptOpen)
	assert.Contains(t, d.View(), "Session expiring")

	d.PressKey('r')

	assert.Equal(t, 1, env.auth.Refreshes())
	assert.False(t, d.State().Session.PromptOpen)
	assert.Equal(t, session.StateActive, d.State().Session.State)
	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	assert.NotContains(t, d.View(), "Session expiring")
}

func TestTUI_WarningPromptDismiss(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	env.clock.Advance(26 * time.Minute)
	env.app.Session.Tick()
	d.AwaitSessionEvent()
	require.True(t, d.State().Session.PromptOpen)

	d.PressEsc()
	assert.False(t, d.State().Session.PromptOpen)
	assert.Equal(t, ViewDashboard, d.ActiveViewID())

	// Stays dismissed for the rest of the session.
	env.clock.Advance(time.Minute)
	env.app.Session.Tick()
	d.AwaitSessionEvent()
	assert.False(t, d.State().Session.PromptOpen)
	assert.Equal(t, session.StateWarning, d.State().Session.State)
}

func TestTUI_WarningPromptLogout(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	env.clock.Advance(26 * time.Minute)
	env.app.Session.Tick()
	d.AwaitSessionEvent()

	d.PressKey('L')

	assert.Equal(t, ViewLogin, d.ActiveViewID())
	assert.Equal(t, session.StateUnauthenticated, env.app.Session.State())
	assert.NotContains(t, d.View(), "Your session has ended")
}

func TestTUI_ShowSessionKeyOpensPrompt(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('s')
	assert.True(t, d.State().Session.PromptOpen)
	assert.Contains(t, d.View(), "Session expiring")
}

func TestTUI_CtrlRRenewsFromForm(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)
	env.clock.Advance(5 * time.Minute)

	d.PressKey('n')
	require.Equal(t, ViewForm, d.ActiveViewID())

	d.SendKey(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, 1, env.auth.Refreshes())
	assert.Equal(t, ViewForm, d.ActiveViewID(), "renewal keeps the form open")
}

func TestTUI_RejectedRequestLogsOut(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)
	env.reports.SetErr("ReportsByDate", api.ErrUnauthorized)

	d.PressKey('r')

	assert.Equal(t, ViewLogin, d.ActiveViewID())
	assert.Equal(t, session.StateExpired, env.app.Session.State())
	assert.Contains(t, d.View(), "Your session has ended")
}

// =============================================================================
// Create / edit
// =============================================================================

func TestTUI_CreateReport(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('n')
	require.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, "New report", d.ActiveViewTitle())

	draft := d.State().Board.CreateDraft()
	require.NotNil(t, draft)
	assert.Equal(t, "2026-03-10", draft.Fields.WorkDate)
	fillDraft(draft)
	d.Submit()

	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	assert.Equal(t, 1, env.reports.Len())
	assert.Equal(t, "Hanbit Bank", env.reports.LastCreated.ClientName)

	b := d.State().Board
	assert.Nil(t, b.CreateDraft(), "draft closes after a save")
	assert.Len(t, b.Reports.Items(), 1)
	assert.True(t, b.Calendar.HasReports(testNow))
	assert.Equal(t, "Report saved.", b.Notice())
}

func TestTUI_CreateValidationKeepsFormOpen(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('n')
	d.Submit()

	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, 2, d.ViewStackLen())
	assert.Equal(t, 0, env.reports.Calls("CreateReport"))
	draft := d.State().Board.CreateDraft()
	require.NotNil(t, draft)
	assert.True(t, workreport.IsValidation(draft.Err))
}

func TestTUI_CreateServerErrorKeepsDraft(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)
	env.reports.SetErr("CreateReport", api.ErrUnavailable)

	d.PressKey('n')
	fillDraft(d.State().Board.CreateDraft())
	d.Submit()

	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	b := d.State().Board
	require.NotNil(t, b.CreateDraft(), "draft survives a failed save")
	assert.Error(t, b.Err())
	assert.Equal(t, "Hanbit Bank", b.CreateDraft().Fields.ClientName)
}

func TestTUI_EscOnDirtyDraftAsksToDiscard(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('n')
	d.State().Board.CreateDraft().Fields.ClientName = "Hanbit Bank"
	d.PressEsc()

	require.Equal(t, ViewConfirm, d.ActiveViewID())
	assert.Contains(t, d.View(), "Discard the unsaved new report?")

	// No keeps the draft.
	d.PressEsc()
	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	require.NotNil(t, d.State().Board.CreateDraft())
	assert.Nil(t, d.State().Board.Pending())

	// Reopening shows the same input.
	d.PressKey('n')
	assert.Equal(t, "Hanbit Bank", d.State().Board.CreateDraft().Fields.ClientName)
}

func TestTUI_EscOnCleanDraftClosesIt(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('n')
	d.PressEsc()

	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	assert.Nil(t, d.State().Board.CreateDraft())
}

func TestTUI_EditReport(t *testing.T) {
	r := testutil.NewTestReport("2026-03-10", testutil.WithClient("Hanbit Bank"))
	env := testApp(t, r).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('e')
	require.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, "Edit report", d.ActiveViewTitle())

	draft := d.State().Board.EditDraft()
	require.NotNil(t, draft)
	assert.Equal(t, r.ID, draft.ReportID)
	draft.Fields.ClientName = "Mirae Card"
	d.Submit()

	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	assert.Equal(t, "Mirae Card", env.reports.LastUpdated.ClientName)
	items := d.State().Board.Reports.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Mirae Card", items[0].ClientName)
}

func TestTUI_DiscardingEditOpensRequestedReport(t *testing.T) {
	env := testApp(t,
		testutil.NewTestReport("2026-03-10", testutil.WithReportID("a"), testutil.WithClient("First")),
		testutil.NewTestReport("2026-03-10", testutil.WithReportID("b"), testutil.WithClient("Second")),
	).loggedIn(t)
	d := NewTestDriver(t, env.app)

	stale, err := d.State().Board.OpenEdit("a")
	require.NoError(t, err)
	stale.Fields.ClientName = "Unsaved"

	d.SendKey(tea.KeyMsg{Type: tea.KeyTab})
	d.PressDown()
	d.PressEnter()
	require.Equal(t, ViewConfirm, d.ActiveViewID())

	d.PressKey('y')

	require.Equal(t, ViewForm, d.ActiveViewID())
	draft := d.State().Board.EditDraft()
	require.NotNil(t, draft)
	assert.Equal(t, "b", draft.ReportID)
	assert.Equal(t, "Second", draft.Fields.ClientName)
}

func TestTUI_EditWithoutReportsFlashes(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('e')
	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	assert.Contains(t, d.View(), "No report selected.")
}

// =============================================================================
// Delete
// =============================================================================

func TestTUI_DeleteReportConfirmed(t *testing.T) {
	env := testApp(t, testutil.NewTestReport("2026-03-10")).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.SendKey(tea.KeyMsg{Type: tea.KeyTab})
	d.PressKey('d')
	require.Equal(t, ViewConfirm, d.ActiveViewID())

	d.PressKey('y')

	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	assert.Equal(t, 0, env.reports.Len())
	assert.Empty(t, d.State().Board.Reports.Items())
	assert.Equal(t, "Report deleted.", d.State().Board.Notice())
}

func TestTUI_ListNavigationPicksRow(t *testing.T) {
	env := testApp(t,
		testutil.NewTestReport("2026-03-10", testutil.WithReportID("a"), testutil.WithClient("First")),
		testutil.NewTestReport("2026-03-10", testutil.WithReportID("b"), testutil.WithClient("Second")),
	).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.SendKey(tea.KeyMsg{Type: tea.KeyTab})
	d.PressDown()
	d.PressDown()
	d.PressUp()
	d.PressDown()
	d.PressKey('d')
	require.Equal(t, ViewConfirm, d.ActiveViewID())
	d.PressKey('y')

	items := d.State().Board.Reports.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "First", items[0].ClientName)
}

func TestTUI_DeleteReportCancelled(t *testing.T) {
	env := testApp(t, testutil.NewTestReport("2026-03-10")).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('d')
	require.Equal(t, ViewConfirm, d.ActiveViewID())

	d.PressEsc()

	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	assert.Equal(t, 1, env.reports.Len())
	assert.Equal(t, 0, env.reports.Calls("DeleteReport"))
	assert.Nil(t, d.State().Board.Pending())
}

// =============================================================================
// Calendar
// =============================================================================

func TestTUI_CalendarSelectsDate(t *testing.T) {
	env := testApp(t, testutil.NewTestReport("2026-03-11", testutil.WithClient("Tomorrow Co"))).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('l')
	d.PressEnter()

	b := d.State().Board
	assert.Equal(t, "2026-03-11", domain.FormatDate(b.Reports.Selected()))
	require.Len(t, b.Reports.Items(), 1)
	assert.Contains(t, d.View(), "Tomorrow Co")
}

func TestTUI_CalendarSwitchWithDirtyDraftAsks(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('n')
	d.State().Board.CreateDraft().Fields.ClientName = "Hanbit Bank"
	d.PressEsc()
	require.Equal(t, ViewConfirm, d.ActiveViewID())
	d.PressEsc()

	d.PressKey('l')
	d.PressEnter()

	require.Equal(t, ViewConfirm, d.ActiveViewID())
	assert.Equal(t, "2026-03-10", domain.FormatDate(d.State().Board.Reports.Selected()))
}

func TestTUI_MonthKeysMoveCalendar(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey(']')
	assert.Equal(t, "2026-04-01", domain.FormatDate(d.State().Board.Calendar.Month()))
	d.PressKey('[')
	d.PressKey('[')
	assert.Equal(t, "2026-02-01", domain.FormatDate(d.State().Board.Calendar.Month()))
}

// =============================================================================
// Files
// =============================================================================

func TestTUI_ApplyExportAll(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.Send(wizardCompleteMsg{nextCmd: applyExport(d.State(), &exportFields{scope: exportScopeAll})})

	b := d.State().Board
	assert.False(t, b.Exporting())
	assert.Contains(t, b.Notice(), "Exported to")
	_, err := os.Stat(filepath.Join(env.app.ExportDir, "work_reports_all.csv"))
	assert.NoError(t, err)
}

func TestTUI_ApplyExportRangeInvalid(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.Send(wizardCompleteMsg{nextCmd: applyExport(d.State(), &exportFields{
		scope: exportScopeRange,
		start: "2026-03-31",
		end:   "2026-03-01",
	})})

	assert.Error(t, d.State().Board.Err())
	assert.Equal(t, 0, env.reports.Calls("ExportRange"))
}

func TestTUI_ApplyImport(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)
	path := filepath.Join(t.TempDir(), "reports.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))

	// Replace without the second confirmation does nothing.
	d.Send(wizardCompleteMsg{nextCmd: applyImport(d.State(), &importFields{path: path, mode: string(domain.ImportReplace)})})
	assert.Empty(t, env.reports.Imports)

	d.Send(wizardCompleteMsg{nextCmd: applyImport(d.State(), &importFields{path: path, mode: string(domain.ImportReplace), confirm: true})})
	require.Len(t, env.reports.Imports, 1)
	assert.Equal(t, domain.ImportReplace, env.reports.Imports[0].Mode)
	assert.Equal(t, "imported", d.State().Board.Notice())
}

func TestTUI_ExportAndImportOpenForms(t *testing.T) {
	env := testApp(t).loggedIn(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('x')
	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, "Export", d.ActiveViewTitle())
	d.PressEsc()

	d.PressKey('i')
	assert.Equal(t, "Import", d.ActiveViewTitle())
	d.PressEsc()
	assert.Equal(t, ViewDashboard, d.ActiveViewID())
}
