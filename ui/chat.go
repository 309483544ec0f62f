package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ScrollPolicy decides whether transcript updates follow the bottom of the
// pane. The chat page reports what its viewport shows after every change.
type ScrollPolicy interface {
	ObserveView(yOffset, height, total, margin int)
	ShouldScroll(force bool) bool
	UserScrolledAway() bool
}

// ChatOptions configures a ChatModel.
type ChatOptions struct {
	Scroll       ScrollPolicy
	ScrollMargin int
	GlamourStyle string
}

// followPolicy always follows. Used when no policy is configured.
type followPolicy struct{}

func (followPolicy) ObserveView(int, int, int, int) {}
func (followPolicy) ShouldScroll(bool) bool         { return true }
func (followPolicy) UserScrolledAway() bool         { return false }

// ChatModel is the conversation pane: the transcript in a scrollable
// viewport with a one-line status row beneath it.
type ChatModel struct {
	session Session
	keys    *KeyMap
	scroll  ScrollPolicy
	margin  int
	render  *fragmentRenderer

	messages  []MessageView
	rendered  []string
	streaming int // index of the reply being streamed, -1 when none

	loading     bool
	notice      string
	noticeError bool
	paused      bool // last reported scroll state

	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
}

// NewChatModel creates the chat page.
func NewChatModel(session Session, keys *KeyMap, opts ChatOptions) *ChatModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))

	policy := opts.Scroll
	if policy == nil {
		policy = followPolicy{}
	}
	if keys == nil {
		keys = newKeyMap()
	}

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return &ChatModel{
		session:   session,
		keys:      keys,
		scroll:    policy,
		margin:    max(opts.ScrollMargin, 0),
		render:    newFragmentRenderer(opts.GlamourStyle),
		streaming: -1,
		viewport:  vp,
		spinner:   sp,
	}
}

func (m *ChatModel) Init() tea.Cmd {
	return nil
}

func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(m.visibleBodyLines()-1, 1)
		m.render.SetWidth(msg.Width - 2)
		m.rerenderAll()
		return m, m.refresh(false)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, tea.Batch(cmd, m.observe())

	case PromptSubmitMsg:
		m.notice = ""
		return m, nil

	case ChatUserMsg:
		m.put(msg.Index, msg.Message, true)
		return m, m.refresh(true)

	case ChatTurnStartMsg:
		m.loading = true
		m.notice = ""
		return m, tea.Batch(m.spinner.Tick, statusCmd(StatusKeyState, stateStreaming), m.refresh(true))

	case ChatAssistantMsg:
		m.streaming = msg.Index
		m.put(msg.Index, msg.Message, false)
		return m, m.refresh(false)

	case ChatTurnEndMsg:
		m.loading = false
		if i := m.streaming; i >= 0 && i < len(m.messages) {
			m.rendered[i] = m.renderEntry(m.messages[i], true)
		}
		m.streaming = -1
		switch {
		case msg.Aborted:
			m.setNotice("reply stopped", false)
		case msg.Error != "":
			m.setNotice("reply failed: "+msg.Error, true)
		}
		return m, tea.Batch(statusCmd(StatusKeyState, stateIdle), m.refresh(true))

	case ChatNoticeMsg:
		m.setNotice(msg.Text, msg.IsError)
		return m, nil

	case ChatClearMsg:
		m.messages = nil
		m.rendered = nil
		m.streaming = -1
		return m, m.refresh(true)
	}
	return m, nil
}

func (m *ChatModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Abort):
		if m.loading && m.session != nil {
			m.session.Abort()
		}
		return nil
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
	case key.Matches(msg, m.keys.ScrollBottom):
		m.viewport.GotoBottom()
	default:
		return nil
	}
	return m.observe()
}

func (m *ChatModel) setNotice(text string, isError bool) {
	m.notice = sanitize(text)
	m.noticeError = isError
}

// put stores msg at index, appending when index is one past the end.
func (m *ChatModel) put(index int, msg MessageView, final bool) {
	out := m.renderEntry(msg, final)
	if index >= 0 && index < len(m.messages) {
		m.messages[index] = msg
		m.rendered[index] = out
		return
	}
	m.messages = append(m.messages, msg)
	m.rendered = append(m.rendered, out)
}

func (m *ChatModel) rerenderAll() {
	for i, msg := range m.messages {
		m.rendered[i] = m.renderEntry(msg, i != m.streaming)
	}
}

func (m *ChatModel) renderEntry(msg MessageView, final bool) string {
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render("▌")
	who := "Ling"
	if msg.IsUser {
		bar = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("93")).Render("▌")
		who = "You"
	}
	header := bar + " " + lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(who+" · "+msg.Time)

	body := m.render.Message(msg, final)
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return header + "\n" + strings.Join(lines, "\n")
}

// refresh lays out the transcript and scrolls to the bottom when the
// policy allows it.
func (m *ChatModel) refresh(force bool) tea.Cmd {
	m.viewport.SetContent(strings.Join(m.rendered, "\n\n"))
	if m.scroll.ShouldScroll(force) {
		m.viewport.GotoBottom()
	}
	return m.observe()
}

// observe reports the viewport position to the policy and returns a status
// update when the follow state changed.
func (m *ChatModel) observe() tea.Cmd {
	m.scroll.ObserveView(m.viewport.YOffset, m.viewport.Height, m.viewport.TotalLineCount(), m.margin)
	paused := m.scroll.UserScrolledAway()
	if paused == m.paused {
		return nil
	}
	m.paused = paused
	if paused {
		return statusCmd(StatusKeyScroll, scrollPaused)
	}
	return statusCmd(StatusKeyScroll, scrollFollow)
}

// Loading reports whether a reply is streaming.
func (m *ChatModel) Loading() bool {
	return m.loading
}

// Messages returns the transcript entries.
func (m *ChatModel) Messages() []MessageView {
	return m.messages
}

// Notice returns the current notice text.
func (m *ChatModel) Notice() string {
	return m.notice
}

func (m *ChatModel) View() string {
	if len(m.messages) == 0 && !m.loading {
		return NewSplash().View()
	}
	return m.viewport.View() + "\n" + m.statusLine()
}

func (m *ChatModel) statusLine() string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	switch {
	case m.notice != "":
		style := dim
		if m.noticeError {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		}
		return style.Render(truncateCells(m.notice, m.width))
	case m.loading:
		return m.spinner.View() + dim.Render(" Ling is answering · esc to stop")
	case m.paused:
		return dim.Render("↓ more below · end to jump")
	}
	return ""
}

func (m *ChatModel) visibleBodyLines() int {
	if m.height <= 0 {
		return 0
	}

	bodyHeight := m.height - mergedHeaderHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	padBottom := 1
	if bodyHeight <= 2 {
		padBottom = 0
	}
	return max(bodyHeight-padBottom, 1)
}

func statusCmd(key, value string) tea.Cmd {
	return func() tea.Msg {
		return StatusItemUpdateMsg{Key: key, Value: value}
	}
}
