package cli

import (
	"github.com/namkunwoo/workreport-front/internal/session"
	"github.com/namkunwoo/workreport-front/internal/workreport"
)

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App

	// Board exists while a session does; nil on the login screen.
	Board *workreport.Board

	// Session is the snapshot last synced from the monitor.
	Session session.Event

	// Terminal dimensions
	Width  int
	Height int
}

// newBoard creates a dashboard board for the current session.
func (s *SharedState) newBoard() *workreport.Board {
	return workreport.NewBoard(s.App.Reports,
		workreport.WithLogger(s.App.logger()),
		workreport.WithExportDir(s.App.ExportDir),
		workreport.WithToday(s.App.now()),
	)
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator),
// status bar (2 lines: separator + hints), and one line of status text.
func (s *SharedState) ContentHeight() int {
	h := s.Height - 5
	if h < 1 {
		return 1
	}
	return h
}
