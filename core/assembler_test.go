package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingchat/core/provider"
	"lingchat/core/stream"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func dataFrame(text string) stream.Frame {
	return stream.Frame{Channel: stream.ChannelData, Text: text}
}

func newTestAssembler(t *testing.T) (*Conversation, *Assembler) {
	t.Helper()
	store := NewConversation()
	store.AppendUser(NewMessage(provider.RoleUser, "hi", fixedNow))
	return store, NewAssembler(store, NewMessage(provider.RoleAssistant, "", fixedNow))
}

func TestAssemblerPlainText(t *testing.T) {
	store, asm := newTestAssembler(t)

	upd, changed, err := asm.Apply(dataFrame("he"))
	require.NoError(t, err)
	require.True(t, changed)
	assert.True(t, upd.Inserted)
	assert.Equal(t, 1, upd.Index)

	upd, changed, err = asm.Apply(dataFrame("llo"))
	require.NoError(t, err)
	require.True(t, changed)
	assert.False(t, upd.Inserted)
	assert.Equal(t, "hello", upd.Message.Content)

	display := store.Display()
	require.Len(t, display, 2)
	assert.Equal(t, "hello", display[1].Content)
	assert.False(t, display[1].IsMarkup)
	assert.Equal(t, "09:26", display[1].Time)

	wire := store.Wire()
	require.Len(t, wire, 2)
	assert.Equal(t, provider.WireMessage{Role: provider.RoleAssistant, Content: "", Time: "09:26"}, wire[1])
}

func TestAssemblerLazyInsertion(t *testing.T) {
	tests := []struct {
		name   string
		frames []stream.Frame
		want   bool
	}{
		{"no frames", nil, false},
		{"empty deltas", []stream.Frame{dataFrame(""), dataFrame("")}, false},
		{"sentinels", []stream.Frame{{Channel: stream.ChannelData, Done: true}, {Channel: stream.ChannelRich, Done: true}}, false},
		{"ignored lines", []stream.Frame{{}, {}}, false},
		{"empty rich fragment", []stream.Frame{{Channel: stream.ChannelRich, Payload: stream.Payload{Type: "unknown"}}}, false},
		{"late text", []stream.Frame{dataFrame(""), dataFrame("x")}, true},
		{"sidenote", []stream.Frame{{Channel: stream.ChannelSidenote, Text: "note"}}, true},
		{"rich", []stream.Frame{{Channel: stream.ChannelRich, Payload: stream.Payload{Type: stream.TypeImage, Content: "u"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, asm := newTestAssembler(t)
			for _, f := range tt.frames {
				_, _, err := asm.Apply(f)
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, asm.Inserted())
			want := 1
			if tt.want {
				want = 2
			}
			assert.Len(t, store.Display(), want)
			assert.Len(t, store.Wire(), want)
		})
	}
}

func TestAssemblerSidenoteThenText(t *testing.T) {
	store, asm := newTestAssembler(t)

	_, _, err := asm.Apply(stream.Frame{Channel: stream.ChannelSidenote, Text: "note"})
	require.NoError(t, err)
	_, _, err = asm.Apply(dataFrame("ok"))
	require.NoError(t, err)

	msg := store.Display()[1]
	assert.True(t, msg.IsMarkup)
	assert.True(t, strings.HasPrefix(msg.Content, "<br><i style="))
	assert.Contains(t, msg.Content, ">note</i></br>")
	assert.True(t, strings.HasSuffix(msg.Content, "ok"))

	// The wire snapshot predates the sidenote.
	assert.Equal(t, "", store.Wire()[1].Content)
	assert.False(t, store.Wire()[1].IsHTML)
}

func TestAssemblerRichLink(t *testing.T) {
	_, asm := newTestAssembler(t)

	upd, changed, err := asm.Apply(stream.Frame{
		Channel: stream.ChannelRich,
		Payload: stream.Payload{Type: stream.TypeLink, Content: "https://x", WebText: "X"},
	})
	require.NoError(t, err)
	require.True(t, changed)
	assert.True(t, upd.Message.IsMarkup)
	assert.Contains(t, upd.Message.Content, `href="https://x"`)
	assert.Contains(t, upd.Message.Content, ">X</a>")
}

func TestAssemblerMarkupIsMonotonic(t *testing.T) {
	_, asm := newTestAssembler(t)

	frames := []stream.Frame{
		dataFrame("a"),
		{Channel: stream.ChannelSidenote, Text: "n"},
		dataFrame("b"),
		{Channel: stream.ChannelData, Done: true},
		dataFrame("c"),
	}
	var seen []bool
	for _, f := range frames {
		upd, changed, err := asm.Apply(f)
		require.NoError(t, err)
		if changed {
			seen = append(seen, upd.Message.IsMarkup)
		}
	}
	assert.Equal(t, []bool{false, true, true, true}, seen)
}

func TestAssemblerUpdatesAreCopies(t *testing.T) {
	_, asm := newTestAssembler(t)

	first, _, err := asm.Apply(dataFrame("one"))
	require.NoError(t, err)
	_, _, err = asm.Apply(dataFrame(" two"))
	require.NoError(t, err)

	assert.Equal(t, "one", first.Message.Content)
	assert.Len(t, first.Message.Parts, 1)
	assert.Equal(t, "one two", asm.Message().Content)
}

func TestAssemblerEscapesTextAfterMarkup(t *testing.T) {
	_, asm := newTestAssembler(t)

	_, _, err := asm.Apply(stream.Frame{Channel: stream.ChannelSidenote, Text: "n"})
	require.NoError(t, err)
	upd, _, err := asm.Apply(dataFrame("<b>bold</b>"))
	require.NoError(t, err)

	assert.Contains(t, upd.Message.Content, "<b>bold</b>")
	markup := upd.Message.DisplayMarkup()
	assert.NotContains(t, markup, "<b>")
	assert.Contains(t, markup, "&lt;b&gt;bold&lt;/b&gt;")
}
