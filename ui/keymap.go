package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the key bindings for the scaffold and the chat page.
type KeyMap struct {
	SwitchTabRight key.Binding
	SwitchTabLeft  key.Binding
	Quit           key.Binding

	// Chat page
	Abort        key.Binding
	Complete     key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	ScrollBottom key.Binding
}

func newKeyMap() *KeyMap {
	return &KeyMap{
		SwitchTabRight: key.NewBinding(
			key.WithKeys("ctrl+right"),
		),
		SwitchTabLeft: key.NewBinding(
			key.WithKeys("ctrl+left"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "exit"),
		),
		Abort: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop the reply"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete command"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		ScrollBottom: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "jump to latest"),
		),
	}
}

// HelpBindings lists the bindings shown on the help page, in order.
func (k *KeyMap) HelpBindings() []key.Binding {
	return []key.Binding{
		k.SwitchTabLeft, k.SwitchTabRight,
		k.Abort, k.Complete,
		k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown, k.ScrollBottom,
		k.Quit,
	}
}
