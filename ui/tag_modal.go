package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tagOffOption is the picker entry that clears the translation tag.
const tagOffOption = "off"

// TagModal picks the translation tag. Choosing the tag already in effect
// clears it, the same toggle /tag performs.
type TagModal struct {
	visible bool
	width   int
	height  int
	options []string
	cursor  int
	current string
}

// NewTagModal creates a picker over tags plus an "off" entry.
func NewTagModal(tags []string, current string) *TagModal {
	return &TagModal{
		options: append(append([]string(nil), tags...), tagOffOption),
		current: current,
	}
}

func (tm *TagModal) Show() {
	tm.visible = true
	tm.cursor = 0
	for i, o := range tm.options {
		if o == tm.current {
			tm.cursor = i
		}
	}
}

func (tm *TagModal) Hide()           { tm.visible = false }
func (tm *TagModal) IsVisible() bool { return tm.visible }

// SetCurrent records the tag in effect ("" for none).
func (tm *TagModal) SetCurrent(tag string) {
	tm.current = tag
}

// Current returns the tag in effect.
func (tm *TagModal) Current() string {
	return tm.current
}

// Move shifts the cursor by delta, clamped to the options.
func (tm *TagModal) Move(delta int) {
	tm.cursor = min(max(tm.cursor+delta, 0), len(tm.options)-1)
}

// Command returns the /tag command for the highlighted option.
func (tm *TagModal) Command() string {
	return "/tag " + tm.options[tm.cursor]
}

func (tm *TagModal) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		tm.width = msg.Width
		tm.height = msg.Height
	}
	return nil
}

func (tm *TagModal) View() string {
	if !tm.visible {
		return ""
	}

	orange := lipgloss.Color("208")
	gray := lipgloss.Color("245")

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(orange).Bold(true).Render("Translation"))
	b.WriteString("\n\n")
	for i, o := range tm.options {
		marker := "  "
		if i == tm.cursor {
			marker = "❯ "
		}
		label := o
		if o == tm.current || (o == tagOffOption && tm.current == "") {
			label += "  ✓"
		}
		style := lipgloss.NewStyle()
		if i == tm.cursor {
			style = style.Foreground(orange).Bold(true)
		}
		b.WriteString(style.Render(marker + label))
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(gray).Italic(true).MarginTop(1).
		Render("↑/↓ choose · enter apply · esc close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(orange).
		Padding(1, 2).
		Width(40).
		Render(b.String())

	return lipgloss.Place(tm.width, tm.height, lipgloss.Center, lipgloss.Center, box)
}
