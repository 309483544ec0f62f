package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const mergedHeaderHeight = 1

// StatusItemUpdateMsg updates a status bar item from any goroutine via
// Notifier.Send, or from a page through a tea.Cmd.
type StatusItemUpdateMsg struct {
	Key   string
	Value string
}

// Scaffold lays out the tabbed pages above a footer holding the tab bar and
// the status bar, and owns the translation picker.
type Scaffold struct {
	termReady       bool
	tabsTooNarrow   bool
	statusTooNarrow bool

	currentTab int
	width      int
	height     int

	tabBar    *tabBar
	statusBar *statusBar
	KeyMap    *KeyMap
	pages     []tea.Model

	borderColor  string
	pagePosition lipgloss.Position

	notifier *Notifier
	session  Session

	statusFocus bool
	tagModal    *TagModal
}

// NewScaffold returns a Scaffold with default styling.
func NewScaffold() *Scaffold {
	return &Scaffold{
		borderColor:  "39",
		pagePosition: lipgloss.Left,
		width:        80,
		height:       24,
		tabBar:       newTabBar(),
		statusBar:    newStatusBar(),
		KeyMap:       newKeyMap(),
		notifier:     newNotifier(),
		tagModal:     NewTagModal(nil, ""),
	}
}

// GetNotifier returns the scaffold's Notifier.
func (s *Scaffold) GetNotifier() *Notifier {
	return s.notifier
}

// Setup-only configuration. These mutate fields directly and must be called
// before tea.Program.Run.

// SetSession sets the session that receives picker choices.
func (s *Scaffold) SetSession(session Session) *Scaffold {
	s.session = session
	return s
}

// SetTagOptions configures the translation picker.
func (s *Scaffold) SetTagOptions(tags []string, current string) *Scaffold {
	s.tagModal = NewTagModal(tags, current)
	return s
}

// SetColors sets the border, tab and status item colors.
func (s *Scaffold) SetColors(border, activeTab, inactiveTab, statusItem string) *Scaffold {
	s.borderColor = border
	s.tabBar.SetColors(activeTab, inactiveTab)
	s.statusBar.SetItemBorderColor(statusItem)
	s.notifier.Notify()
	return s
}

// SetStatusItemPadding sets the padding inside each status item.
func (s *Scaffold) SetStatusItemPadding(left, right int) *Scaffold {
	s.statusBar.SetPadding(left, right)
	s.statusBar.recalc()
	return s
}

// AddPage registers a tab. Duplicate keys are ignored.
func (s *Scaffold) AddPage(key, title string, page tea.Model) *Scaffold {
	for _, t := range s.tabBar.tabs {
		if t.key == key {
			return s
		}
	}
	s.tabBar.addTab(key, title)
	s.pages = append(s.pages, page)
	return s
}

// AddStatusItem adds a status bar item.
func (s *Scaffold) AddStatusItem(key, value string) *Scaffold {
	s.statusBar.addItem(key, value, false)
	return s
}

// AddActionableStatusItem adds a status bar item that opens a picker.
func (s *Scaffold) AddActionableStatusItem(key, value string) *Scaffold {
	s.statusBar.addItem(key, value, true)
	return s
}

// StatusValue returns the displayed value of a status item.
func (s *Scaffold) StatusValue(key string) string {
	if it := s.statusBar.item(key); it != nil {
		return it.Value
	}
	return ""
}

// TagModal returns the translation picker.
func (s *Scaffold) TagModal() *TagModal {
	return s.tagModal
}

func (s *Scaffold) GetTerminalWidth() int  { return s.width }
func (s *Scaffold) GetTerminalHeight() int { return s.height }

// GetCurrentPageKey returns the key of the active page.
func (s *Scaffold) GetCurrentPageKey() string {
	if s.currentTab >= 0 && s.currentTab < len(s.tabBar.tabs) {
		return s.tabBar.tabs[s.currentTab].key
	}
	return ""
}

// Init satisfies tea.Model. Panics if no pages have been added.
func (s *Scaffold) Init() tea.Cmd {
	if len(s.pages) == 0 {
		panic("scaffold: no pages added, please add at least one page")
	}
	return s.notifier.Listen()
}

// Update satisfies tea.Model.
func (s *Scaffold) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 && msg.Height > 0 {
			s.termReady = true
		}
		s.width = msg.Width
		s.height = msg.Height
		return s, tea.Batch(s.updateChildren(msg)...)

	case tea.KeyMsg:
		if cmd, handled := s.handleKey(msg); handled {
			return s, cmd
		}
		return s, tea.Batch(s.updateChildren(msg)...)

	case TabBarSizeMsg:
		s.tabsTooNarrow = msg.NotEnoughToHandleTabs
		return s, nil

	case StatusBarSizeMsg:
		s.statusTooNarrow = msg.NotEnoughToHandleStatusBar
		return s, nil

	case StatusItemUpdateMsg:
		return s, tea.Batch(s.statusBar.setValue(msg.Key, msg.Value), s.notifier.Listen())

	case TagChangedMsg:
		s.tagModal.SetCurrent(msg.Translation)
		cmds := s.updateChildren(msg)
		cmds = append(cmds, s.statusBar.setValue(StatusKeyTag, TagLabel(msg.Translation)), s.notifier.Listen())
		return s, tea.Batch(cmds...)

	default:
		cmds := s.updateChildren(msg)
		cmds = append(cmds, s.notifier.Listen())
		return s, tea.Batch(cmds...)
	}
}

// handleKey applies scaffold-level keys in priority order: the picker,
// status bar selection, then tab switching.
func (s *Scaffold) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, s.KeyMap.Quit) {
		return tea.Quit, true
	}

	if s.tagModal.IsVisible() {
		switch msg.String() {
		case "up", "k":
			s.tagModal.Move(-1)
		case "down", "j":
			s.tagModal.Move(1)
		case "enter":
			s.tagModal.Hide()
			if s.session != nil {
				return runCommand(s.session, s.tagModal.Command()), true
			}
		case "esc":
			s.tagModal.Hide()
		}
		// The picker traps focus.
		return nil, true
	}

	if s.statusFocus {
		switch {
		case key.Matches(msg, s.KeyMap.SwitchTabRight):
			s.statusBar.SelectNext()
			return nil, true
		case key.Matches(msg, s.KeyMap.SwitchTabLeft):
			if s.statusBar.IsAtFirstActionable() {
				s.statusFocus = false
				s.statusBar.SetFocus(false)
				s.selectTab(len(s.pages) - 1)
			} else {
				s.statusBar.SelectPrev()
			}
			return nil, true
		case msg.String() == "enter":
			if it := s.statusBar.GetSelectedItem(); it != nil && it.Key == StatusKeyTag {
				s.tagModal.Show()
			}
			return nil, true
		case msg.String() == "esc":
			s.statusFocus = false
			s.statusBar.SetFocus(false)
			return nil, true
		}
	}

	switch {
	case key.Matches(msg, s.KeyMap.SwitchTabLeft):
		if s.currentTab > 0 {
			s.selectTab(s.currentTab - 1)
		}
		return nil, true
	case key.Matches(msg, s.KeyMap.SwitchTabRight):
		if s.currentTab < len(s.pages)-1 {
			s.selectTab(s.currentTab + 1)
		} else if s.statusBar.HasActionableItems() {
			s.statusFocus = true
			s.statusBar.SetFocus(true)
		}
		return nil, true
	}
	return nil, false
}

func (s *Scaffold) selectTab(i int) {
	s.currentTab = i
	s.tabBar.currentTab = i
}

// updateChildren forwards msg to the bars and pages. Key messages reach only
// the active page; everything else is broadcast so inactive pages keep
// their state current.
func (s *Scaffold) updateChildren(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for _, cmd := range []tea.Cmd{s.tagModal.Update(msg), s.tabBar.Update(msg), s.statusBar.Update(msg)} {
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	_, isKey := msg.(tea.KeyMsg)
	for i := range s.pages {
		if isKey && i != s.currentTab {
			continue
		}
		var cmd tea.Cmd
		s.pages[i], cmd = s.pages[i].Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// View satisfies tea.Model.
func (s *Scaffold) View() string {
	if !s.termReady {
		return "setting up terminal..."
	}
	if s.tabsTooNarrow || s.statusTooNarrow {
		return "terminal is too narrow"
	}
	if s.tagModal.IsVisible() {
		return s.tagModal.View()
	}

	tabs, tabsLen := s.tabBar.renderTabs()
	status, statusLen := s.statusBar.renderItems()
	remaining := s.width - (tabsLen + statusLen + 4)
	if remaining < 0 {
		return "terminal is too narrow"
	}

	line := lipgloss.NewStyle().Foreground(lipgloss.Color(s.borderColor))
	footer := line.Render("──") + tabs + line.Render(strings.Repeat("─", remaining)) + status + line.Render("──")

	bodyHeight := max(s.height-mergedHeaderHeight, 1)
	padBottom := 1
	if bodyHeight <= 2 {
		padBottom = 0
	}

	base := lipgloss.NewStyle().
		Align(s.pagePosition).
		Width(s.width).
		PaddingBottom(padBottom).
		MaxHeight(bodyHeight)

	body := s.pages[s.currentTab].View()
	if visible := bodyHeight - padBottom; visible > 0 && lipgloss.Height(body) < visible {
		body += strings.Repeat("\n", visible-lipgloss.Height(body))
	}

	return lipgloss.JoinVertical(lipgloss.Top, base.Render(body), footer)
}
