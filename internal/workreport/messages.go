package workreport

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

// boardIDs hands out owner tags so results from a torn-down board are
// never applied to its replacement.
var boardIDs atomic.Uint64

type owner uint64

func nextOwner() owner { return owner(boardIDs.Add(1)) }

type markersLoadedMsg struct {
	owner owner
	seq   uint64
	dates []time.Time
	err   error
}

type reportsLoadedMsg struct {
	owner owner
	seq   uint64
	date  time.Time
	items []domain.WorkReport
	err   error
}

type reportCreatedMsg struct {
	owner  owner
	draft  *Draft
	date   time.Time
	report *domain.WorkReport
	err    error
}

type reportUpdatedMsg struct {
	owner   owner
	draft   *Draft
	id      string
	oldDate time.Time
	newDate time.Time
	err     error
}

type reportDeletedMsg struct {
	owner owner
	id    string
	err   error
}

type exportDoneMsg struct {
	owner owner
	path  string
	err   error
}

type importDoneMsg struct {
	owner   owner
	message string
	err     error
}

// EditOpenedMsg is emitted when a confirmed discard goes on to open the
// report the user asked for.
type EditOpenedMsg struct {
	Draft *Draft
}

// AuthFailedMsg is emitted when the backend rejects the session. The
// embedding program must tear the session down.
type AuthFailedMsg struct {
	Err error
}

// authFailed returns a command emitting AuthFailedMsg when err is an
// auth error, and nil otherwise.
func authFailed(err error) tea.Cmd {
	if !api.IsAuthError(err) {
		return nil
	}
	return func() tea.Msg { return AuthFailedMsg{Err: err} }
}
