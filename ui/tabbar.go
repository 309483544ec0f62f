package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const activeTabIcon = "◆ "

type tab struct {
	key   string
	title string
}

type tabBar struct {
	currentTab int
	width      int
	tabs       []tab

	activeColor   string
	inactiveColor string
	padding       int

	titleLength int
}

func newTabBar() *tabBar {
	return &tabBar{
		activeColor:   "205",
		inactiveColor: "255",
		padding:       1,
	}
}

// TabBarSizeMsg reports whether the tabs fit the terminal.
type TabBarSizeMsg struct {
	NotEnoughToHandleTabs bool
}

func (tb *tabBar) addTab(key, title string) {
	tb.tabs = append(tb.tabs, tab{key: key, title: title})
	tb.recalc()
}

func (tb *tabBar) recalc() tea.Cmd {
	total := runewidth.StringWidth(activeTabIcon)
	for _, t := range tb.tabs {
		total += runewidth.StringWidth(t.title) + 2*tb.padding + 2
	}
	tb.titleLength = total

	tooNarrow := tb.width-(total+2) < 0
	return func() tea.Msg { return TabBarSizeMsg{NotEnoughToHandleTabs: tooNarrow} }
}

func (tb *tabBar) SetColors(active, inactive string) {
	tb.activeColor = active
	tb.inactiveColor = inactive
}

func (tb *tabBar) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		tb.width = msg.Width
		return tb.recalc()
	}
	return nil
}

func (tb *tabBar) renderTabs() (string, int) {
	active := lipgloss.NewStyle().Foreground(lipgloss.Color(tb.activeColor))
	inactive := lipgloss.NewStyle().Foreground(lipgloss.Color(tb.inactiveColor))
	title := lipgloss.NewStyle().Padding(0, tb.padding)

	var b strings.Builder
	for i, t := range tb.tabs {
		if i == tb.currentTab {
			b.WriteString(active.Render("┤"))
			b.WriteString(title.Foreground(lipgloss.Color(tb.activeColor)).Render(activeTabIcon + t.title))
			b.WriteString(active.Render("├"))
			continue
		}
		b.WriteString(inactive.Render("┤"))
		b.WriteString(title.Foreground(lipgloss.Color("245")).Render(t.title))
		b.WriteString(inactive.Render("├"))
	}
	return b.String(), tb.titleLength
}
