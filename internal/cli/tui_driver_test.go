package cli

import (
	"testing"
	"time"

	"github.com/namkunwoo/workreport-front/internal/teatest"
)

// TestDriver wraps teatest.Driver with access to appModel internals
// (view stack, shared state) that the generic driver can't see.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver creates a TestDriver from a test App.
// It constructs the appModel, sets terminal size, and drains Init()
// (which loads the board synchronously from the fake API).
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()

	m := newAppModel(app)
	t.Cleanup(m.unsubscribe)
	d := teatest.New(t, m, teatest.WithSize(120, 40))
	d.DrainInit()

	return &TestDriver{Driver: d}
}

// ── High-level helpers ───────────────────────────────────────────────────────

// AwaitSessionEvent delivers the monitor's next published snapshot
// through the model's subscription.
func (d *TestDriver) AwaitSessionEvent() {
	d.T.Helper()
	if !d.DeliverLate(sessionEventMsg{}, time.Second) {
		d.T.Fatal("no session event reached the model")
	}
}

// Submit completes the active form as if its last field were confirmed.
func (d *TestDriver) Submit() {
	d.T.Helper()
	wv, ok := d.appModel().activeView().(*wizardView)
	if !ok {
		d.T.Fatalf("active view %T is not a form", d.appModel().activeView())
	}
	d.Send(wizardCompleteMsg{nextCmd: wv.done()})
}

// LoginAs submits the login view with the given credentials.
func (d *TestDriver) LoginAs(username, password string) {
	d.T.Helper()
	lv, ok := d.appModel().activeView().(*loginView)
	if !ok {
		d.T.Fatalf("active view %T is not the login view", d.appModel().activeView())
	}
	lv.username = username
	lv.password = password
	d.Send(lv.submit()())
}

// ── Inspection ───────────────────────────────────────────────────────────────

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	m := d.appModel()
	v := m.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ActiveViewTitle returns the Title() of the top view on the stack.
func (d *TestDriver) ActiveViewTitle() string {
	m := d.appModel()
	v := m.activeView()
	if v == nil {
		return ""
	}
	return v.Title()
}

// ViewStackLen returns the number of views on the stack.
func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// ViewStackIDs returns the ViewIDs of all views on the stack, bottom to top.
func (d *TestDriver) ViewStackIDs() []ViewID {
	m := d.appModel()
	ids := make([]ViewID, len(m.viewStack))
	for i, v := range m.viewStack {
		ids[i] = v.ID()
	}
	return ids
}

// State returns the shared state for inspection.
func (d *TestDriver) State() *SharedState {
	return d.appModel().state
}

// IsQuitting returns whether the app has signaled a quit.
func (d *TestDriver) IsQuitting() bool {
	return d.appModel().quitting || d.Quitting
}
