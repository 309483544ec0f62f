package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptSubmitMsg is sent to the pages after the session accepted input.
type PromptSubmitMsg struct {
	Value string
}

// promptResultMsg reports whether the session accepted a submission.
type promptResultMsg struct {
	value    string
	accepted bool
}

// AppConfig holds optional configuration for an App.
type AppConfig struct {
	Placeholder string
	CharLimit   int
	Width       int
	PromptGlyph string
	Session     Session
}

// App is the top-level model: the scaffold with a prompt line beneath it.
type App struct {
	Scaffold    *Scaffold
	session     Session
	promptInput textinput.Model
	promptGlyph string
	pending     bool // a submission is waiting for the session's verdict
}

// NewApp creates an App from an existing Scaffold and config.
func NewApp(scaffold *Scaffold, cfg AppConfig) *App {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()
	ti.Placeholder = cfg.Placeholder
	ti.CharLimit = cfg.CharLimit // 0 is unlimited
	ti.Width = 80
	if cfg.Width > 0 {
		ti.Width = cfg.Width
	}

	glyph := "❯"
	if cfg.PromptGlyph != "" {
		glyph = cfg.PromptGlyph
	}

	return &App{
		Scaffold:    scaffold,
		session:     cfg.Session,
		promptInput: ti,
		promptGlyph: glyph,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.Scaffold.Init(), textinput.Blink)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	promptEnabled := a.isPromptEnabled()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.promptInput.Width = msg.Width - 4
		height := msg.Height
		if promptEnabled {
			height--
		}
		return a, a.updateScaffold(tea.WindowSizeMsg{Width: msg.Width, Height: height})

	case promptResultMsg:
		a.pending = false
		if !msg.accepted {
			return a, nil
		}
		if a.promptInput.Value() == msg.value {
			a.promptInput.SetValue("")
		}
		return a, a.updateScaffold(PromptSubmitMsg{Value: msg.value})

	case tea.KeyMsg:
		if promptEnabled && !a.Scaffold.tagModal.IsVisible() {
			switch {
			case msg.String() == "enter":
				return a, a.submit()
			case key.Matches(msg, a.Scaffold.KeyMap.Complete):
				return a, a.complete()
			}
		}
	}

	var cmds []tea.Cmd
	if promptEnabled && !a.Scaffold.tagModal.IsVisible() {
		var cmd tea.Cmd
		a.promptInput, cmd = a.promptInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, a.updateScaffold(msg))
	return a, tea.Batch(cmds...)
}

func (a *App) updateScaffold(msg tea.Msg) tea.Cmd {
	updated, cmd := a.Scaffold.Update(msg)
	a.Scaffold = updated.(*Scaffold)
	return cmd
}

// submit hands the prompt to the session on a separate goroutine. The input
// is cleared only once the session accepts it.
func (a *App) submit() tea.Cmd {
	value := a.promptInput.Value()
	if a.session == nil || a.pending || strings.TrimSpace(value) == "" {
		return nil
	}
	a.pending = true
	session := a.session
	return func() tea.Msg {
		return promptResultMsg{value: value, accepted: session.SubmitMessage(value)}
	}
}

// complete extends a slash command prefix. Several candidates are listed
// as a notice.
func (a *App) complete() tea.Cmd {
	if a.session == nil {
		return nil
	}
	value := a.promptInput.Value()
	matches := a.session.Completions(value)
	switch len(matches) {
	case 0:
		return nil
	case 1:
		a.promptInput.SetValue(matches[0] + " ")
		a.promptInput.CursorEnd()
		return nil
	}
	if prefix := commonPrefix(matches); len(prefix) > len(value) {
		a.promptInput.SetValue(prefix)
		a.promptInput.CursorEnd()
	}
	return a.updateScaffold(ChatNoticeMsg{Text: strings.Join(matches, "  ")})
}

func commonPrefix(words []string) string {
	if len(words) == 0 {
		return ""
	}
	prefix := words[0]
	for _, w := range words[1:] {
		for !strings.HasPrefix(w, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}

// isPromptEnabled reports whether the prompt is shown for the current page.
func (a *App) isPromptEnabled() bool {
	return a.Scaffold.GetCurrentPageKey() == "chat"
}

// PromptValue returns the text currently in the prompt.
func (a *App) PromptValue() string {
	return a.promptInput.Value()
}

func (a *App) View() string {
	view := a.Scaffold.View()
	if a.isPromptEnabled() {
		return view + "\n" + a.promptGlyph + " " + a.promptInput.View()
	}
	return view
}
