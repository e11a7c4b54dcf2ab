package session

import (
	"time"

	"github.com/namkunwoo/workreport-front/internal/domain"
)

// State is the lifecycle state of the client session.
type State int

const (
	StateUnauthenticated State = iota
	StateActive
	StateWarning
	StateRenewing
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateActive:
		return "active"
	case StateWarning:
		return "warning"
	case StateRenewing:
		return "renewing"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Authenticated reports whether a Session exists in this state.
func (s State) Authenticated() bool {
	return s == StateActive || s == StateWarning || s == StateRenewing
}

// Event is a snapshot of the session published to subscribers.
type Event struct {
	State      State
	Remaining  time.Duration // never negative
	ExpiresAt  time.Time
	PromptOpen bool
	User       *domain.User
	Err        error // why the session ended, when it was forced
}
