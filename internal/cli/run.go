package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexander-akhmetov/psoc/internal/debug"
	"github.com/alexander-akhmetov/psoc/internal/event"
	"github.com/alexander-akhmetov/psoc/internal/history"
	"github.com/alexander-akhmetov/psoc/internal/progress"
	"github.com/alexander-akhmetov/psoc/internal/session"
	"github.com/alexander-akhmetov/psoc/internal/tui"
)

const (
	eventsText = "text"
	eventsJSON = "json"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		plain  bool
		events string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an incident response session",
		Long: `Start an incident response session over the protocol catalog.

By default an interactive dashboard is shown. With --plain, commands are read
line by line from stdin:

  start N          start response level N
  complete, done   complete the current step
  reset            discard all progress
  status           show levels and the active protocol
  quit             end the session

--events json implies --plain and writes every notification as one JSON
object per line.

Each session writes an audit log to the logs directory, and every completed
level is recorded in the history database unless --no-history is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch events {
			case eventsText:
			case eventsJSON:
				plain = true
			default:
				return fmt.Errorf("invalid --events %q: want %q or %q", events, eventsText, eventsJSON)
			}
			return a.run(cmd, plain, events == eventsJSON)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Use the line console instead of the dashboard")
	cmd.Flags().StringVar(&events, "events", eventsText, "Console output format: text or json")
	return cmd
}

func (a *app) run(cmd *cobra.Command, plain, jsonEvents bool) error {
	ctx := cmd.Context()

	cat, err := a.loadCatalog()
	if err != nil {
		return err
	}

	var recorder session.HistoryRecorder
	if a.cfg.History.Enabled {
		store, err := history.Open(ctx, a.cfg.ResolvedHistoryPath())
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		recorder = store
	}

	actor := a.cfg.ResolvedActor()
	trigger := a.resolvedTrigger()

	audit, err := progress.NewLogger(progress.Config{
		LogsDir: a.cfg.ResolvedLogsDir(),
		Trigger: trigger,
		Actor:   actor,
		Catalog: a.catalogLabel(),
	})
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer audit.Close()

	out := cmd.OutOrStdout()
	con := newConsole(out, isTerminal(out), jsonEvents)

	opts := session.Options{
		Catalog: cat,
		Actor:   actor,
		Trigger: trigger,
		History: recorder,
		Audit:   audit.Handle,
	}
	if plain {
		opts.Handlers = []event.Handler{con.handle}
	}
	sess, err := session.New(opts)
	if err != nil {
		return err
	}

	debug.L().Info("session started",
		zap.String("actor", actor),
		zap.String("trigger", trigger),
		zap.String("catalog", a.catalogLabel()),
		zap.Bool("plain", plain),
		zap.String("audit_log", audit.Path()),
	)

	reason := "quit"
	if plain {
		reason, err = con.loop(ctx, sess, cmd.InOrStdin())
	} else {
		err = tui.Run(ctx, sess)
		if ctx.Err() != nil {
			reason = "interrupted"
		}
	}
	if err != nil {
		audit.Errorf("%v", err)
		audit.Exit("error", err.Error())
		return err
	}

	audit.Exit(reason, sess.Summary())
	debug.L().Info("session ended", zap.String("reason", reason), zap.String("summary", sess.Summary()))
	return nil
}
