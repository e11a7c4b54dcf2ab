// Package teatest drives bubbletea models synchronously in tests.
//
// A Driver stands in for tea.Program: every message goes straight to
// Update and the returned commands are run and fed back until none are
// left. Commands that block (subscriptions, spinner frames, cursor blink)
// don't return within the command timeout and are set aside. DeliverLate
// feeds their results back once they arrive.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many follow-up commands one message may chain.
const MaxDrainDepth = 100

// DefaultCmdTimeout separates commands that compute a message (fake API
// calls, navigation) from ones that sleep on a timer.
const DefaultCmdTimeout = 10 * time.Millisecond

// Driver is a synchronous harness for any tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once tea.QuitMsg has been produced.
	Quitting bool

	// Dropped counts commands set aside because they outlived the timeout.
	Dropped int

	// Delivered records every message handed to Update, in order.
	Delivered []tea.Msg

	timeout time.Duration
	late    []chan tea.Msg
}

// Option configures a Driver.
type Option func(*Driver)

// New creates a Driver for model. Call DrainInit to run Init().
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, timeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.T.Helper()
		d.update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithCmdTimeout overrides how long a command may run before it is dropped.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.timeout = timeout }
}

// DrainInit runs the model's Init command and everything it leads to.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send delivers msg and drains the resulting commands.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	d.drain(d.update(msg), 0)
}

// SendKey delivers a key message.
func (d *Driver) SendKey(msg tea.KeyMsg) {
	d.T.Helper()
	d.Send(msg)
}

// PressKey delivers a single rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.SendKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func (d *Driver) PressEnter() {
	d.T.Helper()
	d.SendKey(tea.KeyMsg{Type: tea.KeyEnter})
}

func (d *Driver) PressEsc() {
	d.T.Helper()
	d.SendKey(tea.KeyMsg{Type: tea.KeyEsc})
}

func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.SendKey(tea.KeyMsg{Type: tea.KeyCtrlC})
}

func (d *Driver) PressUp() {
	d.T.Helper()
	d.SendKey(tea.KeyMsg{Type: tea.KeyUp})
}

func (d *Driver) PressDown() {
	d.T.Helper()
	d.SendKey(tea.KeyMsg{Type: tea.KeyDown})
}

// Type delivers s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

// View renders the model.
func (d *Driver) View() string {
	return d.Model.View()
}

// DeliveredOfType returns how many delivered messages share the dynamic
// type of sample.
func (d *Driver) DeliveredOfType(sample tea.Msg) int {
	want := fmt.Sprintf("%T", sample)
	n := 0
	for _, msg := range d.Delivered {
		if fmt.Sprintf("%T", msg) == want {
			n++
		}
	}
	return n
}

// ── draining ─────────────────────────────────────────────────────────────────

func (d *Driver) update(msg tea.Msg) tea.Cmd {
	d.Delivered = append(d.Delivered, msg)
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	return cmd
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	msg, ok := d.run(cmd)
	if !ok {
		d.Dropped++
		return
	}
	d.handle(msg, depth)
}

func (d *Driver) handle(msg tea.Msg, depth int) {
	d.T.Helper()
	if msg == nil || isBlink(msg) {
		return
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drain(sub, depth+1)
		}
	case tea.QuitMsg:
		d.Quitting = true
		d.update(msg)
	default:
		d.drain(d.update(msg), depth+1)
	}
}

// run executes cmd, giving up after the driver's timeout. A command
// that gives up is kept so DeliverLate can collect its result.
func (d *Driver) run(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(d.timeout):
		d.late = append(d.late, ch)
		return nil, false
	}
}

// DeliverLate waits up to wait for a set-aside command to produce a
// message of the same dynamic type as sample, delivering every late
// result that arrives meanwhile. It reports whether one was delivered.
func (d *Driver) DeliverLate(sample tea.Msg, wait time.Duration) bool {
	d.T.Helper()
	want := fmt.Sprintf("%T", sample)
	deadline := time.Now().Add(wait)
	for {
		found := false
		pending := d.late
		d.late = nil
		for _, ch := range pending {
			select {
			case msg := <-ch:
				if msg != nil && fmt.Sprintf("%T", msg) == want {
					found = true
				}
				if !d.Quitting {
					d.handle(msg, 0)
				}
			default:
				d.late = append(d.late, ch)
			}
		}
		if found {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

// isBlink matches the unexported cursor blink messages from bubbles,
// which chain into further timer commands.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
