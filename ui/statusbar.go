package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// StatusItem is one cell of the status bar.
type StatusItem struct {
	Key        string
	Value      string
	Actionable bool // opens a picker on enter
}

type statusBar struct {
	width int
	items []*StatusItem

	itemBorderColor string
	leftPadding     int
	rightPadding    int

	itemsLength int

	selected int // -1 when nothing is selected
	focused  bool
}

func newStatusBar() *statusBar {
	return &statusBar{
		itemBorderColor: "49",
		leftPadding:     2,
		rightPadding:    2,
		selected:        -1,
	}
}

// StatusBarSizeMsg reports whether the status bar fits the terminal.
type StatusBarSizeMsg struct {
	NotEnoughToHandleStatusBar bool
}

func (sb *statusBar) addItem(key, value string, actionable bool) {
	if sb.item(key) != nil {
		return
	}
	sb.items = append(sb.items, &StatusItem{Key: key, Value: value, Actionable: actionable})
	sb.recalc()
}

func (sb *statusBar) item(key string) *StatusItem {
	for _, it := range sb.items {
		if it.Key == key {
			return it
		}
	}
	return nil
}

// setValue updates or adds a non-actionable item.
func (sb *statusBar) setValue(key, value string) tea.Cmd {
	if it := sb.item(key); it != nil {
		it.Value = value
		return sb.recalc()
	}
	sb.items = append(sb.items, &StatusItem{Key: key, Value: value})
	return sb.recalc()
}

// recalc measures the items in terminal cells.
func (sb *statusBar) recalc() tea.Cmd {
	total := 0
	for _, it := range sb.items {
		total += runewidth.StringWidth(it.Value) + sb.leftPadding + sb.rightPadding
	}
	if len(sb.items) > 0 {
		total += 2 // ┤ and ├
	}
	sb.itemsLength = total

	tooNarrow := sb.width-(total+2) < 0
	return func() tea.Msg { return StatusBarSizeMsg{NotEnoughToHandleStatusBar: tooNarrow} }
}

func (sb *statusBar) SetItemBorderColor(color string) {
	sb.itemBorderColor = color
}

func (sb *statusBar) SetPadding(left, right int) {
	sb.leftPadding = left
	sb.rightPadding = right
}

// SetFocus enters or leaves item selection. Entering selects the first
// actionable item.
func (sb *statusBar) SetFocus(focused bool) {
	sb.focused = focused
	sb.selected = -1
	if focused {
		sb.selected = sb.step(-1, 1)
	}
}

func (sb *statusBar) SelectNext() { sb.selected = sb.step(sb.selected, 1) }
func (sb *statusBar) SelectPrev() { sb.selected = sb.step(sb.selected, -1) }

// step returns the next actionable index from `from` in direction dir,
// wrapping around, or -1 if there is none.
func (sb *statusBar) step(from, dir int) int {
	n := len(sb.items)
	for i := 1; i <= n; i++ {
		idx := ((from+dir*i)%n + n) % n
		if sb.items[idx].Actionable {
			return idx
		}
	}
	return -1
}

func (sb *statusBar) HasActionableItems() bool {
	return sb.step(-1, 1) >= 0
}

func (sb *statusBar) IsAtFirstActionable() bool {
	return sb.selected >= 0 && sb.selected == sb.step(-1, 1)
}

func (sb *statusBar) GetSelectedItem() *StatusItem {
	if sb.selected >= 0 && sb.selected < len(sb.items) {
		return sb.items[sb.selected]
	}
	return nil
}

func (sb *statusBar) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		sb.width = msg.Width
		return sb.recalc()
	}
	return nil
}

func (sb *statusBar) renderItems() (string, int) {
	edge := lipgloss.NewStyle().Foreground(lipgloss.Color(sb.itemBorderColor))
	normal := lipgloss.NewStyle().PaddingLeft(sb.leftPadding).PaddingRight(sb.rightPadding)
	selected := normal.
		Foreground(lipgloss.Color("208")).
		Background(lipgloss.Color("235")).
		Bold(true)

	var b strings.Builder
	b.WriteString(edge.Render("┤"))
	for i, it := range sb.items {
		if sb.focused && i == sb.selected {
			b.WriteString(selected.Render(it.Value))
		} else {
			b.WriteString(normal.Render(it.Value))
		}
	}
	b.WriteString(edge.Render("├"))
	return b.String(), sb.itemsLength
}

// truncateCells shortens s to width terminal cells with an ellipsis.
func truncateCells(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
