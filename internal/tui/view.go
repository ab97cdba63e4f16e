package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexander-akhmetov/psoc/internal/protocol"
)

func (m Model) sidebarWidth() int {
	return max(40, min(56, m.width*40/100))
}

func (m Model) mainWidth() int {
	return max(m.width-m.sidebarWidth()-4, 20)
}

// logSize returns the activity viewport's inner width and height.
func (m Model) logSize() (int, int) {
	return max(m.mainWidth()-4, 16), max(m.height/2-4, 3)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	contentHeight := max(m.height-4, 10)

	sidebar := levelsBoxStyle.Width(m.sidebarWidth()).Height(contentHeight).
		Render(m.renderLevels(m.sidebarWidth() - 4))

	logHeader := "Activity"
	if m.mode == modeGuide {
		logHeader = fmt.Sprintf("Guide (%d%%)", int(m.logViewport.ScrollPercent()*100))
	}
	mainContent := m.renderActive(m.mainWidth()-4) + "\n" +
		labelStyle.Render(logHeader) + "\n" + m.logViewport.View()
	mainBox := logBoxStyle.Width(m.mainWidth()).Height(contentHeight).Render(mainContent)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, mainBox)
	return body + "\n" + m.renderFooter()
}

func (m Model) renderLevels(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("RESPONSE PROTOCOLS"))
	b.WriteString("\n")

	for i, row := range m.sess.Levels() {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		badge := badgeStyle(row.State).Render(fmt.Sprintf("%-11s", row.State.Label()))
		name := lipgloss.NewStyle().Foreground(toneColor(row.Def.Color)).Render(row.Def.Name)
		fmt.Fprintf(&b, "%s%s L%d %s\n", pointer, badge, row.Def.Level, name)

		if row.Def.EscalationTime != "" {
			b.WriteString(labelStyle.Render(fmt.Sprintf("%16sEscalation: %s", "", row.Def.EscalationTime)))
			b.WriteString("\n")
		}
	}

	done, total := m.sess.Progress()
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	b.WriteString("\n")
	b.WriteString(valueStyle.Render(m.sess.Summary()))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(pct))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Actor: ") + valueStyle.Render(m.sess.Actor()))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Trigger: ") + valueStyle.Render(m.sess.Trigger()))

	return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
}

func (m Model) renderActive(width int) string {
	var b strings.Builder
	st := m.sess.State()
	exec := st.Active
	if exec == nil {
		b.WriteString(labelStyle.Render("No protocol in progress."))
		b.WriteString("\n")
		if rows := m.sess.Levels(); m.cursor < len(rows) {
			row := rows[m.cursor]
			if row.Def.Description != "" {
				b.WriteString(hintStyle.Render(row.Def.Description))
				b.WriteString("\n")
			}
			if row.State == protocol.LevelStartable {
				b.WriteString(hintStyle.Render(fmt.Sprintf("Press enter to start level %d.", row.Def.Level)))
				b.WriteString("\n")
			}
		}
		return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
	}

	def, _ := m.sess.Catalog().Get(exec.Level)
	title := fmt.Sprintf("Level %d: %s", def.Level, def.Name)
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(toneColor(def.Color)).Render(title))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Step %d of %d", exec.CurrentStepIndex+1, len(exec.Steps))))
	if len(def.Teams) > 0 {
		b.WriteString(labelStyle.Render("  Teams: ") + valueStyle.Render(strings.Join(def.Teams, ", ")))
	}
	b.WriteString("\n\n")

	for i, step := range exec.Steps {
		switch {
		case step.Completed:
			line := fmt.Sprintf("[x] %d. %s", i+1, step.Action)
			if step.CompletedAt != nil {
				line += fmt.Sprintf(" (%s, %s)", step.CompletedBy, step.CompletedAt.Format(eventTimeFormat))
			}
			b.WriteString(doneStepStyle.Render(line))
		case i == exec.CurrentStepIndex:
			b.WriteString(currentStepStyle.Render(fmt.Sprintf("[>] %d. %s", i+1, step.Action)))
		default:
			b.WriteString(pendingStepStyle.Render(fmt.Sprintf("[ ] %d. %s", i+1, step.Action)))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
}

func (m Model) renderFooter() string {
	var line string
	if e, ok := m.sess.LastEvent(); ok {
		line = toastStyle.Render(e.Title) + " " + valueStyle.Render(e.Text)
	}
	if m.hint != "" {
		style := hintStyle
		if m.hintError {
			style = errorStyle
		}
		if line != "" {
			line += "  "
		}
		line += style.Render(m.hint)
	}
	return line + "\n" + m.help.View(m.keys)
}
