package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Session is the part of the dialog session the UI drives. core.Session
// satisfies it without a ui→core import.
type Session interface {
	SubmitMessage(text string) bool
	Abort() bool
	Completions(prefix string) []string
}

// Status bar item keys.
const (
	StatusKeyBackend = "backend"
	StatusKeyTag     = "tag"
	StatusKeyState   = "state"
	StatusKeyScroll  = "scroll"
)

const (
	stateIdle      = "● idle"
	stateStreaming = "◌ answering"
	scrollFollow   = "↧ follow"
	scrollPaused   = "⏸ paused"
)

// TagLabel is the status bar text for a translation tag.
func TagLabel(tag string) string {
	if tag == "" {
		return "⇄ no translation"
	}
	return "⇄ " + tag
}

// ConfigureDefaultScaffold applies lingchat's key bindings, colors and
// status items.
func ConfigureDefaultScaffold(s *Scaffold, backend string, tags []string, translation string) {
	s.KeyMap.SwitchTabLeft = key.NewBinding(
		key.WithKeys("shift+left"),
		key.WithHelp("shift+←", "previous tab"),
	)
	s.KeyMap.SwitchTabRight = key.NewBinding(
		key.WithKeys("shift+right"),
		key.WithHelp("shift+→", "next tab / status bar"),
	)

	orange := "208"
	s.SetColors(orange, orange, orange, orange)
	s.SetStatusItemPadding(1, 1)
	s.SetTagOptions(tags, translation)

	s.AddStatusItem(StatusKeyBackend, "◎ "+truncateCells(backend, 32))
	s.AddActionableStatusItem(StatusKeyTag, TagLabel(translation))
	s.AddStatusItem(StatusKeyState, stateIdle)
	s.AddStatusItem(StatusKeyScroll, scrollFollow)
}

// AddDefaultPages registers the chat and help pages.
func AddDefaultPages(s *Scaffold, session Session, opts ChatOptions, commands []CommandHelp) *ChatModel {
	chat := NewChatModel(session, s.KeyMap, opts)
	s.SetSession(session)
	s.AddPage("chat", "Chat", chat)
	s.AddPage("help", "Help", NewHelpPage(s, commands))
	return chat
}

// runCommand submits text off the Bubble Tea goroutine. The session reports
// back through the notifier, which must not be called from inside Update.
func runCommand(session Session, text string) tea.Cmd {
	return func() tea.Msg {
		session.SubmitMessage(text)
		return nil
	}
}
