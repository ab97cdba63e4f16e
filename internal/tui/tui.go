// Package tui implements the interactive protocol dashboard using bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexander-akhmetov/psoc/internal/session"
)

// Run shows the dashboard for sess until the operator quits or ctx is
// cancelled.
func Run(ctx context.Context, sess *session.Session) error {
	p := tea.NewProgram(NewModel(sess), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
