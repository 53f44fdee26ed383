package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bassamadnan/lumimail/mailbox"
	"github.com/bassamadnan/lumimail/stats"
	"github.com/bassamadnan/lumimail/tui"
)

var metricsCmd = &cobra.Command{
	Use:         "metrics",
	Short:       "Open the mailbox metrics dashboard",
	Long:        "Open the mailbox metrics dashboard. With --json the summary is printed instead.",
	Annotations: map[string]string{tuiAnnotation: "true"},
	RunE:        runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if jsonOutput {
		res, err := a.orch.FetchEmails(ctx, mailbox.Metrics, "")
		if err != nil {
			return err
		}
		summary := stats.Summarize(res.Emails, time.Local)
		summary.Complete = res.NextPageToken == ""
		PrintJSON(summary)
		return nil
	}

	logger.Info("Starting metrics dashboard")
	p := tea.NewProgram(tui.NewInitialModel(ctx, a.orch), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running metrics dashboard: %w", err)
	}
	logger.Info("Metrics dashboard stopped")
	return nil
}
