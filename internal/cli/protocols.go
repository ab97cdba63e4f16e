package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/alexander-akhmetov/psoc/internal/catalog"
)

func newProtocolsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "protocols",
		Aliases: []string{"levels", "ls"},
		Short:   "List the response levels in the catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writePrettyJSON(out, catalogJSON(cat), isTerminal(out))
			}
			printCatalog(out, cat, a.catalogLabel())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	return cmd
}

func printCatalog(out io.Writer, cat *catalog.Catalog, label string) {
	fmt.Fprintf(out, "Catalog: %s (%d levels)\n", label, cat.Len())
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, def := range cat.Levels() {
		fmt.Fprintf(out, "Level %d  %-28s %2d steps", def.Level, def.Name, len(def.Actions))
		if def.EscalationTime != "" {
			fmt.Fprintf(out, "  escalate: %s", def.EscalationTime)
		}
		fmt.Fprintln(out)
		if def.Description != "" {
			fmt.Fprintf(out, "         %s\n", def.Description)
		}
	}
}

func catalogJSON(cat *catalog.Catalog) []byte {
	out := []byte(`{"protocols":[]}`)
	for i, def := range cat.Levels() {
		p := fmt.Sprintf("protocols.%d.", i)
		out = mustSet(out, p+"level", def.Level)
		out = mustSet(out, p+"name", def.Name)
		if def.Description != "" {
			out = mustSet(out, p+"description", def.Description)
		}
		if def.Color != "" {
			out = mustSet(out, p+"color", def.Color)
		}
		if def.EscalationTime != "" {
			out = mustSet(out, p+"escalation_time", def.EscalationTime)
		}
		out = mustSet(out, p+"teams", nonNil(def.Teams))
		out = mustSet(out, p+"actions", nonNil(def.Actions))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// writePrettyJSON indents data and colors it when writing to a terminal.
func writePrettyJSON(out io.Writer, data []byte, color bool) error {
	formatted := pretty.Pretty(data)
	if color {
		formatted = pretty.Color(formatted, nil)
	}
	_, err := out.Write(formatted)
	return err
}
