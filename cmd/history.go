package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/treelights/internal/journal"
	"github.com/zjrosen/treelights/internal/presentation"
)

var (
	histSession  string
	histType     string
	histLimit    int
	histSessions bool
	histFormat   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded events from the journal",
	Long: `Show events recorded by earlier runs. Recording is enabled with
journal.enabled in the config file.

Examples:
  # Last 50 events across every run
  treelights history

  # Runs, newest first
  treelights history --sessions

  # Colors shown during one run
  treelights history --session 0b9e5a4c-... --type color/set`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := presentation.ParseFormat(histFormat)
		if err != nil {
			return err
		}
		return showHistory(cmd.Context(), historyOptions{
			Path:     cfg.Journal.Path,
			Query:    journal.Query{Session: histSession, Type: histType, Limit: histLimit},
			Sessions: histSessions,
			Format:   format,
		}, os.Stdout)
	},
}

func init() {
	historyCmd.Flags().StringVarP(&histSession, "session", "s", "", "only events of this session id")
	historyCmd.Flags().StringVarP(&histType, "type", "t", "", "only events of this type (e.g. color/set)")
	historyCmd.Flags().IntVarP(&histLimit, "limit", "l", journal.DefaultLimit, "most recent events to show")
	historyCmd.Flags().BoolVar(&histSessions, "sessions", false, "list sessions instead of events")
	historyCmd.Flags().StringVarP(&histFormat, "format", "f", "table", "output format: table, yaml or json")
	rootCmd.AddCommand(historyCmd)
}

type historyOptions struct {
	Path     string
	Query    journal.Query
	Sessions bool
	Format   presentation.Format
}

// showHistory writes journal contents to w. A journal that was never
// created is an error rather than an empty result.
func showHistory(ctx context.Context, opts historyOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(opts.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no journal at %s (enable journal in the config to record runs)", opts.Path)
		}
		return fmt.Errorf("checking journal: %w", err)
	}

	db, err := journal.NewDB(opts.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	formatter := presentation.NewFormatter(w, opts.Format)
	if opts.Sessions {
		sessions, err := db.Sessions(ctx)
		if err != nil {
			return err
		}
		return formatter.FormatSessions(presentation.FromJournalSessions(sessions))
	}

	entries, err := db.List(ctx, opts.Query)
	if err != nil {
		return err
	}
	return formatter.FormatEntries(presentation.FromJournalEntries(entries))
}
