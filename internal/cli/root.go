// Package cli implements the command-line interface for psoc.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexander-akhmetov/psoc/internal/catalog"
	"github.com/alexander-akhmetov/psoc/internal/config"
	"github.com/alexander-akhmetov/psoc/internal/debug"
	"github.com/alexander-akhmetov/psoc/internal/dirs"
	"github.com/alexander-akhmetov/psoc/internal/session"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func versionString() string {
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

// app carries global flag values and the resolved configuration for one
// invocation.
type app struct {
	actor       string
	catalogPath string
	trigger     string
	noHistory   bool
	verbose     bool

	cfg *config.Config

	// loadConfig is config.Load; tests replace it.
	loadConfig func() (*config.Config, error)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(config.Load).ExecuteContext(ctx)
}

func newRootCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	a := &app{loadConfig: loadConfig}

	root := &cobra.Command{
		Use:   "psoc",
		Short: "Sequential incident response protocol runner",
		Long: `psoc walks an operator through a catalog of escalating incident response
protocols. Levels unlock strictly in order: a level can start only after the
previous one is completed, and only one protocol runs at a time.`,
		Version:           versionString(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			debug.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.actor, "actor", "", "Name recorded on completed steps (default: config actor or $USER)")
	pf.StringVar(&a.catalogPath, "catalog", "", "Path to a protocol catalog YAML file (default: built-in catalog)")
	pf.StringVar(&a.trigger, "trigger", "", "What triggered this response, recorded in history and log names (default: Manual)")
	pf.BoolVar(&a.noHistory, "no-history", false, "Do not record completed levels in the history database")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newRunCmd(a),
		newProtocolsCmd(a),
		newGuideCmd(a),
		newHistoryCmd(a),
		newLogsCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads configuration and builds the diagnostic logger. Diagnostics
// always go to the state dir log file; --verbose mirrors them to stderr
// except while the TUI owns the terminal.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyCLIFlags(a.actor, a.catalogPath, a.noHistory, a.verbose)
	a.cfg = cfg

	if err := os.MkdirAll(dirs.StateDir(), 0o750); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	outputs := []string{dirs.DiagnosticsLogPath()}
	if a.verbose && !usesTUI(cmd) {
		outputs = append(outputs, "stderr")
	}
	if err := debug.Init(cfg.LogLevel, outputs...); err != nil {
		return err
	}
	debug.L().Debug("config loaded",
		zap.String("command", cmd.Name()),
		zap.Strings("sources", cfg.Sources()),
	)
	return nil
}

func usesTUI(cmd *cobra.Command) bool {
	if cmd.Name() != "run" {
		return false
	}
	plain, err := cmd.Flags().GetBool("plain")
	return err == nil && !plain
}

// loadCatalog resolves the configured catalog.
func (a *app) loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(a.cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func (a *app) catalogLabel() string {
	if a.cfg.CatalogPath == "" {
		return "built-in"
	}
	return a.cfg.CatalogPath
}

func (a *app) resolvedTrigger() string {
	if a.trigger != "" {
		return a.trigger
	}
	return session.DefaultTrigger
}
