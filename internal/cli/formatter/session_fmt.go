package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/namkunwoo/workreport-front/internal/session"
)

// FormatSessionBadge renders the compact header badge: user and countdown.
func FormatSessionBadge(ev session.Event) string {
	if !ev.State.Authenticated() {
		return SessionIndicator(ev.State)
	}
	countdown := SessionStyle(ev.State).Render(FormatCountdown(ev.Remaining))
	if ev.State == session.StateRenewing {
		countdown = StyleYellow.Render("renewing…")
	}
	name := ev.User.DisplayName()
	if name == "" {
		return countdown
	}
	return StyleBlue.Render(name) + " " + Dim("·") + " " + countdown
}

// FormatSessionStatus renders the session for the status command.
func FormatSessionStatus(ev session.Event, now time.Time) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("%s %s", Dim("State    "), SessionIndicator(ev.State)))
	if ev.User != nil {
		lines = append(lines, fmt.Sprintf("%s %s %s", Dim("User     "), Bold(ev.User.DisplayName()), Dim("("+ev.User.Username+")")))
	}
	if ev.State.Authenticated() {
		lines = append(lines,
			fmt.Sprintf("%s %s", Dim("Expires  "), ev.ExpiresAt.In(now.Location()).Format("2006-01-02 15:04:05")),
			fmt.Sprintf("%s %s", Dim("Remaining"), SessionStyle(ev.State).Render(FormatCountdown(ev.Remaining))),
		)
		if session.InWarningWindow(ev.Remaining) {
			lines = append(lines, StyleYellow.Render("Session expires soon. Run `workreport session renew`."))
		}
	}
	if ev.Err != nil {
		lines = append(lines, fmt.Sprintf("%s %s", Dim("Reason   "), StyleRed.Render(ev.Err.Error())))
	}
	return strings.Join(lines, "\n")
}

// FormatSessionPrompt renders the expiry warning shown inside the TUI.
func FormatSessionPrompt(ev session.Event) string {
	msg := fmt.Sprintf("Your session expires in %s.", Bold(FormatCountdown(ev.Remaining)))
	keys := Dim("r: renew  L: log out  esc: dismiss")
	return RenderBox("Session expiring", msg+"\n\n"+keys)
}
