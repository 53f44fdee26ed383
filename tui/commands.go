package tui

import (
	"context"
	"time"

	"github.com/bassamadnan/lumimail/fetch"
	"github.com/bassamadnan/lumimail/mailbox"
	"github.com/bassamadnan/lumimail/stats"
	tea "github.com/charmbracelet/bubbletea"
)

// fetchMetricsCmd loads the metrics corpus and summarizes it off the UI loop.
// reload drops every cached section first.
func fetchMetricsCmd(ctx context.Context, mail Mailbox, reload bool) tea.Cmd {
	return func() tea.Msg {
		var (
			res *fetch.Result
			err error
		)
		if reload {
			res, err = mail.Reload(ctx, mailbox.Metrics)
		} else {
			res, err = mail.FetchEmails(ctx, mailbox.Metrics, "")
		}
		if err != nil {
			return ErrorMsg{Err: err}
		}
		summary := stats.Summarize(res.Emails, time.Local)
		summary.Complete = res.NextPageToken == ""
		return MetricsLoadedMsg{Result: res, Summary: summary}
	}
}

// statusTickCmd creates a ticker for updating the status bar periodically.
func statusTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return StatusTickMsg{Time: t}
	})
}
