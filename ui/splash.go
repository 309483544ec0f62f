package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Splash is the welcome screen shown while the transcript is empty.
type Splash struct{}

func NewSplash() *Splash {
	return &Splash{}
}

func (s *Splash) View() string {
	mark := []string{
		`  _ _             `,
		` | (_)_ __   __ _ `,
		` | | | '_ \ / _' |`,
		` | | | | | | (_| |`,
		` |_|_|_| |_|\__, |`,
		`            |___/ `,
	}
	help := []string{
		"Ask the knowledge base",
		"",
		"  Enter       send",
		"  Esc         stop the reply",
		"  Tab         complete /commands",
		"  Ctrl+C      exit",
	}

	markStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	var b strings.Builder
	for i, row := range mark {
		b.WriteString(markStyle.Render(row))
		if i < len(help) {
			b.WriteString("   ")
			b.WriteString(help[i])
		}
		b.WriteString("\n")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("135")).
		Padding(0, 1, 1, 1)

	return box.Render(strings.TrimRight(b.String(), "\n"))
}
