package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/alexander-akhmetov/psoc/internal/debug"
	"github.com/alexander-akhmetov/psoc/internal/engine"
	"github.com/alexander-akhmetov/psoc/internal/event"
	"github.com/alexander-akhmetov/psoc/internal/session"
)

const eventTimeFormat = "15:04:05"

func createRendererCmd(width int) tea.Cmd {
	return func() tea.Msg {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(max(width-4, 40)),
		)
		if err != nil {
			debug.Logf("tui: failed to create glamour renderer: %v", err)
		}
		return rendererReadyMsg{renderer: renderer}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.WindowSize()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.logSize()
		if !m.ready {
			m.logViewport = viewport.New(w, h)
			m.ready = true
			cmds = append(cmds, createRendererCmd(w))
		} else {
			m.logViewport.Width = w
			m.logViewport.Height = h
		}
		m.progress.Width = max(m.sidebarWidth()-6, 10)
		m.help.Width = m.width
		m.refreshLog()

	case rendererReadyMsg:
		m.renderer = msg.renderer
		m.refreshLog()
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.sess.Levels()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.mode == modeGuide {
			m.logViewport.ScrollUp(1)
			break
		}
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.mode == modeGuide {
			m.logViewport.ScrollDown(1)
			break
		}
		if m.cursor < len(rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Start):
		if len(rows) == 0 {
			break
		}
		level := rows[m.cursor].Def.Level
		m.setResult(m.sess.Start(level))

	case key.Matches(msg, m.keys.Complete):
		err := m.sess.Complete()
		m.setResult(err)
		if err == nil || errors.Is(err, session.ErrHistory) {
			m.followCompletion()
		}

	case key.Matches(msg, m.keys.Reset):
		m.sess.Reset()
		m.setResult(nil)
		m.cursor = 0

	case key.Matches(msg, m.keys.Guide):
		if m.mode == modeGuide {
			m.mode = modeLevels
		} else {
			m.mode = modeGuide
		}
		m.refreshLog()
		if m.mode == modeGuide {
			m.logViewport.GotoTop()
		}
	}

	return m, nil
}

// setResult records the outcome of an action: a dimmed hint when the
// action was refused, nothing when it went through.
func (m *Model) setResult(err error) {
	m.hint, m.hintError = "", false
	switch {
	case err == nil:
	case errors.Is(err, session.ErrHistory):
		m.hint, m.hintError = err.Error(), true
	case errors.Is(err, engine.ErrNoActiveExecution):
		m.hint = "Nothing in progress. Select an available level and press enter."
	case errors.Is(err, engine.ErrPreconditionFailed):
		m.hint = hintForPrecondition(err)
	default:
		m.hint, m.hintError = err.Error(), true
	}
	m.mode = modeLevels
	m.refreshLog()
}

// followCompletion moves the cursor to the newly unlocked level after a
// level completes.
func (m *Model) followCompletion() {
	e, ok := m.sess.LastEvent()
	if !ok || e.Kind != event.KindLevelComplete || e.MaxReached {
		return
	}
	for i, row := range m.sess.Levels() {
		if row.Def.Level == e.NextLevel {
			m.cursor = i
			return
		}
	}
}

func hintForPrecondition(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, "cannot start: "); i >= 0 {
		reason := msg[i+len("cannot start: "):]
		return fmt.Sprintf("Locked: %s.", reason)
	}
	return strings.TrimPrefix(msg, engine.ErrPreconditionFailed.Error()+": ")
}

func (m *Model) refreshLog() {
	if !m.ready {
		return
	}
	if m.mode == modeGuide {
		m.logViewport.SetContent(m.renderGuide())
		return
	}
	m.logViewport.SetContent(m.renderEvents())
	m.logViewport.GotoBottom()
}

func (m Model) renderGuide() string {
	md := m.sess.Catalog().Markdown()
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		debug.Logf("tui: render guide: %v", err)
		return md
	}
	return out
}

func (m Model) renderEvents() string {
	evs := m.sess.Events()
	if len(evs) == 0 {
		return hintStyle.Render("No activity yet.")
	}
	lines := make([]string, 0, len(evs))
	for _, e := range evs {
		line := labelStyle.Render(e.At.Format(eventTimeFormat)) + "  " + valueStyle.Render(e.Message())
		if e.Actor != "" {
			line += labelStyle.Render(" (" + e.Actor + ")")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
