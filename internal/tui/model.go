package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/alexander-akhmetov/psoc/internal/session"
)

type viewMode int

const (
	modeLevels viewMode = iota
	modeGuide
)

// Model is the bubbletea model for the protocol dashboard.
type Model struct {
	sess *session.Session
	keys keyMap

	help        help.Model
	progress    progress.Model
	logViewport viewport.Model
	renderer    *glamour.TermRenderer

	cursor    int
	mode      viewMode
	hint      string
	hintError bool

	width  int
	height int
	ready  bool
}

// NewModel creates a dashboard over sess. The cursor starts on the first
// level that can be started.
func NewModel(sess *session.Session) Model {
	m := Model{
		sess:     sess,
		keys:     defaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.cursor = m.firstStartable()
	return m
}

type rendererReadyMsg struct {
	renderer *glamour.TermRenderer
}

func (m Model) firstStartable() int {
	for i, row := range m.sess.Levels() {
		if m.sess.CanStart(row.Def.Level) {
			return i
		}
	}
	return 0
}
