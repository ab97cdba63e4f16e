package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage psoc configuration",
		Long:  `View and manage psoc configuration.`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show resolved configuration with source annotations",
		Long: `Show the fully resolved configuration with annotations indicating
where each value came from.

Configuration is loaded from multiple sources with the following precedence:
  1. Embedded defaults (built into binary)
  2. Global config (~/.config/psoc/config.yaml)
  3. Environment variables (PSOC_*)
  4. Local config (.psoc/config.yaml)
  5. CLI flags (highest precedence)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showConfig(cmd)
		},
	})
	return configCmd
}

func (a *app) showConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	cfg := a.cfg

	fmt.Fprintln(out, "# psoc Configuration")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "## Sources (in order of precedence)")
	for _, src := range cfg.Sources() {
		fmt.Fprintf(out, "  - %s\n", src)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Directories")
	fmt.Fprintf(out, "  Global config: %s\n", cfg.ConfigDir())
	if cfg.LocalDir() != "" {
		fmt.Fprintf(out, "  Local config:  %s\n", cfg.LocalDir())
	} else {
		fmt.Fprintf(out, "  Local config:  (none detected)\n")
	}
	fmt.Fprintf(out, "  Logs:          %s\n", cfg.ResolvedLogsDir())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Session")
	if cfg.Actor != "" {
		fmt.Fprintf(out, "  actor:        %s\n", cfg.Actor)
	} else {
		fmt.Fprintf(out, "  actor:        %s (default)\n", cfg.ResolvedActor())
	}
	fmt.Fprintf(out, "  catalog_path: %s\n", a.catalogLabel())
	fmt.Fprintf(out, "  log_level:    %s\n", cfg.LogLevel)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## History")
	fmt.Fprintf(out, "  enabled: %t\n", cfg.History.Enabled)
	fmt.Fprintf(out, "  path:    %s\n", cfg.ResolvedHistoryPath())
	return nil
}
