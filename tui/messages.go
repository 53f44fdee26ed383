package tui

import (
	"time"

	"github.com/bassamadnan/lumimail/fetch"
	"github.com/bassamadnan/lumimail/stats"
)

// MetricsLoadedMsg carries a freshly fetched metrics corpus and its summary.
type MetricsLoadedMsg struct {
	Result  *fetch.Result
	Summary stats.Summary
}

// A message to indicate an error occurred, typically from a command.
type ErrorMsg struct{ Err error }

// Error makes it compatible with the error interface.
func (e ErrorMsg) Error() string { return e.Err.Error() }

// A message for timed status updates.
type StatusTickMsg struct{ Time time.Time }

// Message to clear a temporary status message after a timeout.
type clearTempStatusMsg struct{}
