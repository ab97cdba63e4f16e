package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/psoc/internal/progress"
)

func newLogsCmd(a *app) *cobra.Command {
	var (
		list   bool
		recent int
	)

	cmd := &cobra.Command{
		Use:   "logs [trigger]",
		Short: "Show session audit logs",
		Long: `Show the audit log of the most recent session, optionally filtered by
trigger.

Options:
  --list, -l     List recent log files
  --recent N     Number of log files to list (default: 10)

Examples:
  psoc logs              # Show the latest session log
  psoc logs ALERT-42     # Show the latest log for a trigger
  psoc logs -l           # List recent logs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logsDir := a.cfg.ResolvedLogsDir()
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			out := cmd.OutOrStdout()
			if list {
				return listLogs(out, logsDir, filter, recent)
			}
			return showLatestLog(out, logsDir, filter)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List recent log files")
	cmd.Flags().IntVar(&recent, "recent", 10, "Number of recent logs to list")
	return cmd
}

func listLogs(out io.Writer, logsDir, filter string, recent int) error {
	logs, err := progress.FindLogs(logsDir, filter)
	if err != nil {
		return fmt.Errorf("failed to find logs: %w", err)
	}

	if len(logs) == 0 {
		fmt.Fprintln(out, "No log files found.")
		fmt.Fprintf(out, "Log directory: %s\n", logsDir)
		return nil
	}

	fmt.Fprintf(out, "Recent log files (showing %d):\n", min(recent, len(logs)))
	fmt.Fprintln(out, strings.Repeat("-", 60))

	for i, lf := range logs {
		if i >= recent {
			break
		}
		fmt.Fprintf(out, "  %s  %-30s %6d bytes\n",
			lf.Timestamp.Format("2006-01-02 15:04:05"),
			lf.Trigger,
			lf.Size,
		)
		fmt.Fprintf(out, "    %s\n", lf.Path)
	}
	return nil
}

func showLatestLog(out io.Writer, logsDir, filter string) error {
	lf, err := progress.FindLatestLog(logsDir, filter)
	if err != nil {
		return fmt.Errorf("failed to find log: %w", err)
	}
	if lf == nil {
		if filter != "" {
			fmt.Fprintf(out, "No logs found for trigger: %s\n", filter)
		} else {
			fmt.Fprintln(out, "No logs found.")
		}
		fmt.Fprintln(out, "Tip: Use 'psoc logs -l' to list all logs")
		return nil
	}

	fmt.Fprintf(out, "Log for %s (%s):\n", lf.Trigger, lf.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(out, strings.Repeat("-", 60))

	data, err := os.ReadFile(lf.Path)
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	_, err = out.Write(data)
	return err
}
