package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bassamadnan/lumimail/fetch"
	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/mailbox"
)

var (
	fetchPageToken string
	fetchReload    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [section]",
	Short: "Print one page of a mailbox section",
	Long: `Print one page of a mailbox section, served from the cache when it is
fresh enough. Sections: inbox, unread, starred, important, sent, drafts,
scheduled, snoozed, archive, tracked, spam, trash, all, metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchPageToken, "page-token", "", "Continue from a previous page's cursor (bypasses the cache)")
	fetchCmd.Flags().BoolVar(&fetchReload, "reload", false, "Drop every cached section and refetch")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	section := mailbox.Inbox
	if len(args) == 1 {
		s, err := mailbox.Parse(args[0])
		if err != nil {
			return err
		}
		section = s
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	var res *fetch.Result
	if fetchReload {
		res, err = a.orch.Reload(ctx, section)
	} else {
		res, err = a.orch.FetchEmails(ctx, section, fetchPageToken)
	}
	if err != nil {
		return err
	}
	if PrintJSON(res) {
		return nil
	}

	headline(section.Title())
	PrintHeader(fmt.Sprintf("%d emails", len(res.Emails)))
	now := time.Now()
	for _, e := range res.Emails {
		fmt.Println(emailLine(e, now))
	}
	fmt.Println()

	switch {
	case res.Degraded:
		PrintWarning("Gmail unreachable, showing a cached copy")
	case res.FromCache:
		PrintInfo("Served from cache")
	}
	if res.NextPageToken != "" {
		PrintInfof("More available: %s", BoldStyle.Render("--page-token "+res.NextPageToken))
	}
	return nil
}

func emailLine(e gmail.Email, now time.Time) string {
	marker := " "
	if !e.IsRead {
		marker = InfoStyle.Render("●")
	}
	star := " "
	if e.IsStarred {
		star = WarningStyle.Render("★")
	}
	from := e.FromName
	if from == "" {
		from = e.FromEmail
	}
	return fmt.Sprintf("  %s%s %s  %-22.22s %s", marker, star, DimStyle.Render(shortDate(e.Date, now)), from, e.Subject)
}

func shortDate(t, now time.Time) string {
	if t.IsZero() {
		return "      "
	}
	t = t.Local()
	if t.Year() == now.Year() && t.YearDay() == now.Local().YearDay() {
		return t.Format("15:04 ")
	}
	return t.Format("Jan 02")
}
