package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bassamadnan/lumimail/cache"
	"github.com/bassamadnan/lumimail/mailbox"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the section cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the freshness of every cached section",
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached section",
	RunE:  runCacheClear,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop sections older than the maximum cache age",
	RunE:  runCachePrune,
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd, cacheClearCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

type sectionStatus struct {
	Section    mailbox.Section `json:"section"`
	Freshness  string          `json:"freshness"`
	Emails     int             `json:"emails"`
	Age        string          `json:"age,omitempty"`
	IsComplete bool            `json:"isComplete"`
}

func runCacheStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	policy := cachePolicy(cfg)
	now := time.Now()
	var rows []sectionStatus
	for _, s := range mailbox.Sections {
		entry, err := store.Get(ctx, s)
		if err != nil {
			entry = nil
		}
		row := sectionStatus{Section: s, Freshness: policy.Classify(entry, now).String()}
		if entry != nil {
			row.Emails = len(entry.Emails)
			row.Age = entry.Age(now).Round(time.Second).String()
			row.IsComplete = entry.Meta.IsComplete
		}
		rows = append(rows, row)
	}
	if PrintJSON(rows) {
		return nil
	}

	headline("cache " + cfg.CacheBackend)
	PrintHeader("Sections")
	for _, r := range rows {
		if r.Freshness == cache.Missing.String() {
			PrintKeyValue(r.Section.Title(), DimStyle.Render(r.Freshness))
			continue
		}
		PrintKeyValue(r.Section.Title(), fmt.Sprintf("%-8s %4d emails  %s old", r.Freshness, r.Emails, r.Age))
	}
	fmt.Println()
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	logger.Info("Cache cleared", "backend", cfg.CacheBackend)
	PrintSuccess("Cache cleared")
	return nil
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Prune(ctx, time.Now().Add(-cache.MaxAge))
	if err != nil {
		return fmt.Errorf("pruning cache: %w", err)
	}
	PrintSuccessf("Pruned %d sections", n)
	return nil
}
