// Package cli wires configuration, credentials, the cache and the fetch
// orchestrator behind the lumimail commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bassamadnan/lumimail/config"
	"github.com/bassamadnan/lumimail/tui"
)

// Version is injected at build time via ldflags.
var Version = "dev"

// tuiAnnotation marks commands that own the terminal; their logs go to
// LOG_FILE instead of stderr.
const tuiAnnotation = "tui"

var (
	cfg        *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
	jsonOutput bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "lumimail",
	Short: "Terminal Gmail client with a local section cache",
	Long: BrandStyle.Render("lumimail") + ` - Terminal Gmail client

Browse Gmail sections from a cache that refreshes itself in the
background, inspect mailbox metrics, or serve both over HTTP.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Annotations:       map[string]string{tuiAnnotation: "true"},
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	RunE: runBrowse,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("  %s version %s\n", BrandStyle.Render("lumimail"), Version))
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		PrintError(err)
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	var out io.Writer = os.Stderr
	if isTUI(cmd) {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return err
		}
		out, logCloser = f, f
	}
	logger = setupLogger(out, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded", "command", cmd.CommandPath(), "cache", cfg.CacheBackend, "tokens", cfg.TokenBackend)
	return nil
}

func isTUI(cmd *cobra.Command) bool {
	return cmd.Annotations[tuiAnnotation] == "true"
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	prefs, err := config.NewManager(cfg.PrefsFile)
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}

	logger.Info("Starting mailbox browser", "section", prefs.LastSection())
	ui := tui.NewApp(ctx, a.orch, prefs, logger)
	go func() {
		<-ctx.Done()
		ui.Stop()
	}()
	if err := ui.Run(); err != nil {
		return fmt.Errorf("running mailbox browser: %w", err)
	}
	logger.Info("Mailbox browser stopped")
	return nil
}

// headline prints the brand line above human-readable output.
func headline(title string) {
	if jsonOutput {
		return
	}
	fmt.Printf("\n  %s %s\n", BrandStyle.Render("lumimail"), lipgloss.NewStyle().Foreground(ColorSubtle).Render(title))
}
