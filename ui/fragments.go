package ui

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

const (
	sidenoteColor = lipgloss.Color("#6a5acd")
	linkColor     = lipgloss.Color("39")
	minWrapWidth  = 20
)

// fragmentRenderer turns message parts into terminal text. Plain text is
// wrapped while a reply streams and rendered as markdown once it is final.
type fragmentRenderer struct {
	style string
	width int
	md    *glamour.TermRenderer
}

func newFragmentRenderer(style string) *fragmentRenderer {
	if style == "" {
		style = "dark"
	}
	return &fragmentRenderer{style: style, width: 80}
}

// SetWidth sets the wrap width. The markdown renderer is rebuilt lazily.
func (r *fragmentRenderer) SetWidth(width int) {
	width = max(width, minWrapWidth)
	if width != r.width {
		r.width = width
		r.md = nil
	}
}

func (r *fragmentRenderer) markdown(text string) (string, error) {
	if r.md == nil {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(r.width),
			glamour.WithPreservedNewLines(),
		)
		if err != nil {
			return "", fmt.Errorf("creating glamour renderer: %w", err)
		}
		r.md = md
	}
	out, err := r.md.Render(text)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return strings.Join(trimEmptyLines(strings.Split(out, "\n")), "\n"), nil
}

// Message renders the body of msg without its header. Escape sequences and
// control characters in the parts never reach the terminal.
func (r *fragmentRenderer) Message(msg MessageView, final bool) string {
	if msg.IsUser {
		var text strings.Builder
		for _, p := range msg.Parts {
			text.WriteString(sanitize(p.Text))
		}
		return strings.Join(wrapText(text.String(), r.width), "\n")
	}

	var blocks []string
	var run strings.Builder
	flush := func() {
		if run.Len() == 0 {
			return
		}
		blocks = append(blocks, r.text(run.String(), final))
		run.Reset()
	}
	for _, p := range msg.Parts {
		rawURL := p.Content
		p = cleanPart(p)
		switch p.Kind {
		case PartText:
			run.WriteString(p.Text)
		case PartSidenote:
			flush()
			blocks = append(blocks, r.sidenote(p.Text))
		case PartRich:
			flush()
			if !linkable(rawURL) {
				rawURL = ""
			}
			if out := r.rich(p, rawURL); out != "" {
				blocks = append(blocks, out)
			}
		}
	}
	flush()
	return strings.Join(blocks, "\n")
}

func (r *fragmentRenderer) text(s string, final bool) string {
	if final {
		if out, err := r.markdown(s); err == nil {
			return out
		}
	}
	return strings.Join(wrapText(s, r.width), "\n")
}

func (r *fragmentRenderer) sidenote(text string) string {
	return lipgloss.NewStyle().
		Italic(true).
		Foreground(sidenoteColor).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(sidenoteColor).
		PaddingLeft(1).
		Width(r.width - 2).
		Render(text)
}

// rich renders a typed fragment. target is the link or image URL, empty when
// it must not become a terminal hyperlink.
func (r *fragmentRenderer) rich(p PartView, target string) string {
	switch p.Type {
	case "code":
		return r.code(p.Language, p.Content)
	case "image":
		return hyperlink(target, "[image] "+p.Content)
	case "table":
		return r.table(p.Data)
	case "link":
		text := p.WebText
		if text == "" {
			text = p.Content
		}
		return hyperlink(target, text)
	default:
		return strings.Join(wrapText(p.Content, r.width), "\n")
	}
}

func (r *fragmentRenderer) code(lang, content string) string {
	fence := "```"
	for strings.Contains(content, fence) {
		fence += "`"
	}
	out, err := r.markdown(fence + lang + "\n" + content + "\n" + fence)
	if err != nil {
		return lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			PaddingLeft(1).
			Render(content)
	}
	return out
}

// table renders data[0] as the header row and the rest as body rows. Short
// rows are padded so every row has a cell per column.
func (r *fragmentRenderer) table(data [][]string) string {
	if len(data) == 0 {
		return ""
	}
	cols := 0
	for _, row := range data {
		cols = max(cols, len(row))
	}
	padded := make([][]string, len(data))
	for i, row := range data {
		padded[i] = make([]string, cols)
		copy(padded[i], row)
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("245"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers(padded[0]...).
		Rows(padded[1:]...)
	return t.Render()
}

// hyperlink renders text as an OSC 8 link to target. Terminals without link
// support show the text alone, as do targets that are not web links.
func hyperlink(target, text string) string {
	styled := lipgloss.NewStyle().Foreground(linkColor).Underline(true).Render(text)
	if !linkable(target) {
		return styled
	}
	return termenv.Hyperlink(target, styled)
}

// linkable reports whether target is an http(s) or relative URL with no
// control characters.
func linkable(target string) bool {
	if target == "" || strings.ContainsFunc(target, unicode.IsControl) {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return true
	}
	return false
}

// sanitize removes escape sequences and control characters other than
// newline and tab.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, ansi.Strip(s))
}

// cleanPart sanitizes every server-supplied string of p.
func cleanPart(p PartView) PartView {
	p.Text = sanitize(p.Text)
	p.Type = sanitize(p.Type)
	p.Language = sanitize(p.Language)
	p.Content = sanitize(p.Content)
	p.WebText = sanitize(p.WebText)
	if p.Data != nil {
		data := make([][]string, len(p.Data))
		for i, row := range p.Data {
			data[i] = make([]string, len(row))
			for j, cell := range row {
				data[i][j] = sanitize(cell)
			}
		}
		p.Data = data
	}
	return p
}

func trimEmptyLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start >= end {
		return []string{""}
	}
	return lines[start:end]
}

// wrapText wraps text to width terminal cells, keeping existing line
// breaks. Wide runes count as two cells.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			result = append(result, "")
			continue
		}
		result = append(result, wrapLine(line, width)...)
	}
	if len(result) == 0 {
		return []string{""}
	}
	return result
}

func wrapLine(line string, width int) []string {
	var lines []string
	var cur strings.Builder
	curWidth := 0

	for _, word := range strings.Fields(line) {
		w := runewidth.StringWidth(word)
		if w > width {
			// Hard-break words wider than the line, such as CJK runs
			// without spaces or long URLs.
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
				curWidth = 0
			}
			for runewidth.StringWidth(word) > width {
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					break
				}
				lines = append(lines, head)
				word = word[len(head):]
			}
			cur.WriteString(word)
			curWidth = runewidth.StringWidth(word)
			continue
		}

		switch {
		case cur.Len() == 0:
			cur.WriteString(word)
			curWidth = w
		case curWidth+1+w <= width:
			cur.WriteString(" ")
			cur.WriteString(word)
			curWidth += 1 + w
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(word)
			curWidth = w
		}
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
