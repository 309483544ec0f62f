package ui

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingchat/core"
)

type mockSession struct {
	mu          sync.Mutex
	submitted   []string
	aborted     int
	reject      bool
	completions []string
}

func (s *mockSession) SubmitMessage(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, text)
	return !s.reject
}

func (s *mockSession) Abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted++
	return true
}

func (s *mockSession) Completions(prefix string) []string {
	var out []string
	for _, c := range s.completions {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func textMessage(isUser bool, text string) MessageView {
	return MessageView{IsUser: isUser, Time: "09:26", Parts: []PartView{{Kind: PartText, Text: text}}}
}

func manyLines(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func newTestChat(t *testing.T) (*ChatModel, *mockSession, *core.ScrollGovernor) {
	t.Helper()
	sess := &mockSession{}
	gov := core.NewScrollGovernor(core.DefaultScrollThreshold)
	m := NewChatModel(sess, nil, ChatOptions{Scroll: gov, ScrollMargin: 1})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 12})
	return m, sess, gov
}

func TestChatFollowsStreamUntilUserScrollsAway(t *testing.T) {
	m, _, gov := newTestChat(t)

	m.Update(ChatUserMsg{Index: 0, Message: textMessage(true, "hello")})
	m.Update(ChatTurnStartMsg{TurnID: "t1"})
	assert.True(t, m.Loading())

	m.Update(ChatAssistantMsg{Index: 1, Message: textMessage(false, manyLines(40)), Inserted: true})
	assert.True(t, m.viewport.AtBottom(), "fragment follows while at the bottom")
	assert.False(t, gov.UserScrolledAway())

	m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	require.True(t, gov.UserScrolledAway())
	offset := m.viewport.YOffset

	m.Update(ChatAssistantMsg{Index: 1, Message: textMessage(false, manyLines(60))})
	assert.Equal(t, offset, m.viewport.YOffset, "fragment must not move a scrolled-away pane")
	assert.Len(t, m.Messages(), 2)

	m.Update(ChatTurnEndMsg{TurnID: "t1"})
	assert.False(t, m.Loading())
	assert.True(t, m.viewport.AtBottom(), "end of stream scrolls unconditionally")
	assert.False(t, gov.UserScrolledAway())
}

func TestChatUserMessageForcesScroll(t *testing.T) {
	m, _, gov := newTestChat(t)
	m.Update(ChatUserMsg{Index: 0, Message: textMessage(true, manyLines(40))})
	m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	require.True(t, gov.UserScrolledAway())

	m.Update(ChatUserMsg{Index: 1, Message: textMessage(true, "next question")})
	assert.True(t, m.viewport.AtBottom())
}

func TestChatScrollStateReachesStatusBar(t *testing.T) {
	m, _, _ := newTestChat(t)
	m.Update(ChatUserMsg{Index: 0, Message: textMessage(true, manyLines(40))})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	require.NotNil(t, cmd)
	assert.Equal(t, StatusItemUpdateMsg{Key: StatusKeyScroll, Value: scrollPaused}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	require.NotNil(t, cmd)
	assert.Equal(t, StatusItemUpdateMsg{Key: StatusKeyScroll, Value: scrollFollow}, cmd())
}

func TestChatAbortOnlyWhileLoading(t *testing.T) {
	m, sess, _ := newTestChat(t)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 0, sess.aborted)

	m.Update(ChatTurnStartMsg{TurnID: "t1"})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, sess.aborted)
}

func TestChatTurnEndNotices(t *testing.T) {
	m, _, _ := newTestChat(t)

	m.Update(ChatTurnStartMsg{TurnID: "t1"})
	m.Update(ChatTurnEndMsg{TurnID: "t1", Error: "dialog request failed: connection refused"})
	assert.Contains(t, m.Notice(), "connection refused")
	assert.True(t, m.noticeError)

	m.Update(PromptSubmitMsg{Value: "again"})
	assert.Empty(t, m.Notice())

	m.Update(ChatTurnStartMsg{TurnID: "t2"})
	m.Update(ChatTurnEndMsg{TurnID: "t2", Aborted: true})
	assert.Equal(t, "reply stopped", m.Notice())
	assert.False(t, m.noticeError)
}

func TestChatReplacesAssistantInPlace(t *testing.T) {
	m, _, _ := newTestChat(t)
	m.Update(ChatUserMsg{Index: 0, Message: textMessage(true, "q")})
	m.Update(ChatAssistantMsg{Index: 1, Message: textMessage(false, "a"), Inserted: true})
	m.Update(ChatAssistantMsg{Index: 1, Message: textMessage(false, "ab")})

	require.Len(t, m.Messages(), 2)
	assert.Equal(t, "ab", m.Messages()[1].Parts[0].Text)
	assert.Contains(t, m.View(), "ab")
}

func TestChatClear(t *testing.T) {
	m, _, _ := newTestChat(t)
	m.Update(ChatUserMsg{Index: 0, Message: textMessage(true, "q")})
	m.Update(ChatClearMsg{})
	assert.Empty(t, m.Messages())
	assert.Contains(t, m.View(), "Ask the knowledge base")
}
