package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/psoc/internal/history"
)

const historyTimeFormat = "2006-01-02 15:04"

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit    int
		asJSON   bool
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed response levels",
		Long: `Show completed response levels recorded by previous sessions, most
recent first.

Options:
  --limit N   Show at most N records (0 for all)
  --json      Print records as JSON
  --clear     Delete every record`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := history.Open(ctx, a.cfg.ResolvedHistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if clearAll {
				n, err := store.Clear(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %d history records.\n", n)
				return nil
			}

			records, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writePrettyJSON(out, historyJSON(records), isTerminal(out))
			}
			if !a.cfg.History.Enabled {
				fmt.Fprintln(out, "Note: history recording is disabled in the current configuration.")
			}
			printHistory(out, records)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all history records")
	return cmd
}

func printHistory(out io.Writer, records []history.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No completed protocols recorded.")
		return
	}

	fmt.Fprintf(out, "%-5s  %-26s  %-16s  %-16s  %-8s  %-12s  %s\n",
		"LEVEL", "NAME", "STARTED", "COMPLETED", "DURATION", "TRIGGER", "ACTOR")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for _, r := range records {
		fmt.Fprintf(out, "%-5d  %-26s  %-16s  %-16s  %-8s  %-12s  %s\n",
			r.Level,
			truncate(r.Name, 26),
			r.StartedAt.Local().Format(historyTimeFormat),
			r.CompletedAt.Local().Format(historyTimeFormat),
			history.FormatDuration(r.Duration()),
			truncate(r.TriggeredBy, 12),
			r.Actor,
		)
	}
}

func historyJSON(records []history.Record) []byte {
	out := []byte(`{"records":[]}`)
	for i, r := range records {
		p := fmt.Sprintf("records.%d.", i)
		out = mustSet(out, p+"id", r.ID)
		out = mustSet(out, p+"level", r.Level)
		out = mustSet(out, p+"name", r.Name)
		out = mustSet(out, p+"triggered_by", r.TriggeredBy)
		out = mustSet(out, p+"actor", r.Actor)
		out = mustSet(out, p+"started_at", r.StartedAt.UTC().Format(time.RFC3339))
		out = mustSet(out, p+"completed_at", r.CompletedAt.UTC().Format(time.RFC3339))
		out = mustSet(out, p+"duration", history.FormatDuration(r.Duration()))
		out = mustSet(out, p+"duration_seconds", int64(r.Duration().Seconds()))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
