package cli

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/psoc/internal/debug"
)

func newGuideCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Show the response guide: actions, teams and escalation per level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}
			md := cat.Markdown()
			out := cmd.OutOrStdout()
			if raw || !isTerminal(out) {
				_, err := fmt.Fprint(out, md)
				return err
			}

			width := terminalWidth(out, 80)
			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(max(width-4, 40)),
			)
			if err != nil {
				debug.Logf("guide: failed to create glamour renderer: %v", err)
				_, err := fmt.Fprint(out, md)
				return err
			}
			rendered, err := renderer.Render(md)
			if err != nil {
				return fmt.Errorf("render guide: %w", err)
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering")
	return cmd
}
