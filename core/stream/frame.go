package stream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Channel identifies the prefix category of a frame.
type Channel int

const (
	ChannelNone     Channel = iota // unrecognized or blank line
	ChannelData                    // "data: " chat-completion delta
	ChannelSidenote                // "added: " italic aside
	ChannelRich                    // "link: " typed rich fragment
)

// Line prefixes. Detection is exact, trailing space included.
const (
	PrefixData     = "data: "
	PrefixSidenote = "added: "
	PrefixRich     = "link: "

	// DoneSentinel means "no payload on this line". It does not end the turn.
	DoneSentinel = "[DONE]"
)

const (
	thinkClose  = "</think>"
	thinkMarker = "think>"
)

func (c Channel) String() string {
	switch c {
	case ChannelData:
		return "data"
	case ChannelSidenote:
		return "added"
	case ChannelRich:
		return "link"
	default:
		return "none"
	}
}

// Rich fragment types carried on the link channel.
const (
	TypeCode  = "code"
	TypeImage = "image"
	TypeTable = "table"
	TypeLink  = "link"
)

// Payload is the decoded body of a link frame. Which fields are meaningful
// depends on Type.
type Payload struct {
	Type     string     `json:"type"`
	Language string     `json:"language,omitempty"`
	Content  string     `json:"content"`
	WebText  string     `json:"webText,omitempty"`
	Rows     int        `json:"rows,omitempty"`
	Cols     int        `json:"cols,omitempty"`
	Data     [][]string `json:"data,omitempty"`
}

// Frame is one classified line.
type Frame struct {
	Channel Channel
	Done    bool    // sentinel line, nothing to apply
	Text    string  // data delta after think stripping, or sidenote text
	Payload Payload // link channel only
	Error   string  // error member reported by the backend on a data line
}

// Ignored reports whether the frame carries nothing to apply.
func (f Frame) Ignored() bool {
	return f.Channel == ChannelNone || f.Done
}

// DecodeError reports a malformed JSON payload. The line is dropped and the
// stream continues.
type DecodeError struct {
	Channel Channel
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("stream: malformed %s payload %q: %v", e.Channel, e.Payload, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Parse classifies line by prefix and decodes its payload. Blank lines and
// unknown prefixes yield a ChannelNone frame and no error.
func Parse(line string) (Frame, error) {
	if strings.TrimSpace(line) == "" {
		return Frame{}, nil
	}
	switch {
	case strings.HasPrefix(line, PrefixData):
		return parseData(strings.TrimSpace(line[len(PrefixData):]))
	case strings.HasPrefix(line, PrefixSidenote):
		return Frame{Channel: ChannelSidenote, Text: line[len(PrefixSidenote):]}, nil
	case strings.HasPrefix(line, PrefixRich):
		return parseRich(strings.TrimSpace(line[len(PrefixRich):]))
	default:
		return Frame{}, nil
	}
}

func parseData(payload string) (Frame, error) {
	if payload == DoneSentinel {
		return Frame{Channel: ChannelData, Done: true}, nil
	}
	if !gjson.Valid(payload) {
		return Frame{}, &DecodeError{Channel: ChannelData, Payload: payload, Err: fmt.Errorf("invalid json")}
	}
	doc := gjson.Parse(payload)
	frame := Frame{Channel: ChannelData}
	if content := doc.Get("choices.0.delta.content"); content.Type == gjson.String {
		frame.Text = StripThink(content.String())
	}
	if e := doc.Get("error"); e.Exists() {
		frame.Error = e.String()
	}
	return frame, nil
}

func parseRich(payload string) (Frame, error) {
	if payload == DoneSentinel {
		return Frame{Channel: ChannelRich, Done: true}, nil
	}
	var p Payload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Frame{}, &DecodeError{Channel: ChannelRich, Payload: payload, Err: err}
	}
	return Frame{Channel: ChannelRich, Payload: p}, nil
}

// StripThink drops a reasoning preamble from a single delta. When the delta
// closes a think block, everything through the first "</think>" is removed;
// otherwise everything through the first "think>" is removed. Content without
// the marker is returned unchanged. Markers split across deltas are not
// detected.
func StripThink(content string) string {
	if i := strings.Index(content, thinkClose); i >= 0 {
		return content[i+len(thinkClose):]
	}
	if i := strings.Index(content, thinkMarker); i >= 0 {
		return content[i+len(thinkMarker):]
	}
	return content
}
