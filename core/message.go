package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"lingchat/core/provider"
	"lingchat/core/render"
	"lingchat/core/stream"
)

// timeLayout is the HH:MM stamp shown next to each message.
const timeLayout = "15:04"

// PartKind tells what kind of fragment was appended to a message.
type PartKind int

const (
	PartText     PartKind = iota // plain delta, appended verbatim
	PartSidenote                 // italic aside markup
	PartRich                     // rendered link-channel payload
)

// Part records one appended fragment so the display layer can escape plain
// deltas that arrived alongside markup.
type Part struct {
	Kind    PartKind
	Text    string         // delta text or sidenote text
	Payload stream.Payload // PartRich only
	Markup  string         // display markup for sidenote and rich parts
}

// Message is one display-history entry.
type Message struct {
	ID       string
	Role     provider.Role
	Content  string // raw accumulation: plain deltas verbatim plus markup fragments
	IsMarkup bool   // never reverts once true
	Time     string // HH:MM at creation
	Parts    []Part
}

// NewMessage creates a message stamped with now.
func NewMessage(role provider.Role, content string, now time.Time) Message {
	return Message{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
		Time:    now.Format(timeLayout),
	}
}

// append adds a fragment. Sidenote and rich parts flip IsMarkup.
func (m *Message) append(p Part) {
	switch p.Kind {
	case PartText:
		m.Content += p.Text
	default:
		m.Content += p.Markup
		m.IsMarkup = true
	}
	m.Parts = append(m.Parts, p)
}

// Clone returns a copy that shares no slices with m.
func (m Message) Clone() Message {
	if m.Parts != nil {
		m.Parts = append([]Part(nil), m.Parts...)
	}
	return m
}

// Snapshot returns the wire form of m as it is right now.
func (m Message) Snapshot() provider.WireMessage {
	return provider.WireMessage{
		Role:    m.Role,
		Content: m.Content,
		Time:    m.Time,
		IsHTML:  m.IsMarkup,
	}
}

// DisplayMarkup returns m as safe HTML. Plain deltas are escaped here, at
// render time; markup parts are emitted as produced by the renderer.
func (m Message) DisplayMarkup() string {
	if len(m.Parts) == 0 {
		return render.Escape(m.Content)
	}
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Kind == PartText {
			b.WriteString(render.Escape(p.Text))
			continue
		}
		b.WriteString(p.Markup)
	}
	return b.String()
}

// PlainText returns the text a reader would copy: line breaks removed and,
// for markup messages, only the text content of the markup.
func (m Message) PlainText() string {
	text := stripLineBreaks(m.Content)
	if !m.IsMarkup {
		return text
	}
	return textContent(stripLineBreaks(m.DisplayMarkup()))
}

func stripLineBreaks(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', '\u2028', '\u2029':
			return -1
		}
		return r
	}, s)
}

// textContent concatenates the text nodes of an HTML fragment.
func textContent(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
