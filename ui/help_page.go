package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CommandHelp describes one slash command.
type CommandHelp struct {
	Usage   string
	Summary string
}

// HelpPage lists key bindings and slash commands.
type HelpPage struct {
	scaffold *Scaffold
	commands []CommandHelp
	help     help.Model
}

func NewHelpPage(scaffold *Scaffold, commands []CommandHelp) *HelpPage {
	return &HelpPage{
		scaffold: scaffold,
		commands: commands,
		help:     help.New(),
	}
}

func (p *HelpPage) Init() tea.Cmd {
	return nil
}

func (p *HelpPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		p.help.Width = msg.Width
	}
	return p, nil
}

func (p *HelpPage) View() string {
	title := lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	var b strings.Builder
	b.WriteString(title.Render("Keys"))
	b.WriteString("\n\n")
	b.WriteString(p.help.FullHelpView(p.keyColumns()))
	b.WriteString("\n\n")

	b.WriteString(title.Render("Commands"))
	b.WriteString("\n\n")
	width := 0
	for _, c := range p.commands {
		width = max(width, lipgloss.Width(c.Usage))
	}
	for _, c := range p.commands {
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Width(width + 3).Render(c.Usage))
		b.WriteString(dim.Render(c.Summary))
		b.WriteString("\n")
	}
	return b.String()
}

// keyColumns splits the bindings into columns of four.
func (p *HelpPage) keyColumns() [][]key.Binding {
	bindings := p.scaffold.KeyMap.HelpBindings()
	var cols [][]key.Binding
	for len(bindings) > 0 {
		n := min(4, len(bindings))
		cols = append(cols, bindings[:n])
		bindings = bindings[n:]
	}
	return cols
}
