package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingchat/core"
	"lingchat/core/provider"
	"lingchat/core/stream"
)

var exportedAt = time.Date(2026, 7, 4, 18, 30, 0, 0, time.UTC)

func transcript(t *testing.T) []core.Message {
	t.Helper()
	store := core.NewConversation()
	store.AppendUser(core.NewMessage(provider.RoleUser, "<b>show</b> me", exportedAt))
	asm := core.NewAssembler(store, core.NewMessage(provider.RoleAssistant, "", exportedAt))
	for _, f := range []stream.Frame{
		{Channel: stream.ChannelData, Text: "a < b"},
		{Channel: stream.ChannelSidenote, Text: "from doc#42"},
		{Channel: stream.ChannelRich, Payload: stream.Payload{Type: stream.TypeCode, Language: "go", Content: "x := 1"}},
	} {
		_, _, err := asm.Apply(f)
		require.NoError(t, err)
	}
	return store.Display()
}

func TestRender(t *testing.T) {
	out, err := Render(transcript(t), exportedAt)
	require.NoError(t, err)
	page := string(out)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "&lt;b&gt;show&lt;/b&gt; me")
	assert.NotContains(t, page, "<b>show</b>")
	assert.Contains(t, page, "a &lt; b<br><i style=")
	assert.Contains(t, page, `<code class="language-go">x := 1</code>`)
	assert.Contains(t, page, `class="message user"`)
	assert.Contains(t, page, `class="message assistant"`)
	assert.Contains(t, page, "You · 18:30")
}

func TestExportDefaultPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := &HTMLExporter{Dir: dir, Now: func() time.Time { return exportedAt }}

	path, err := e.Export(transcript(t), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lingchat-20260704-183000.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "language-go")
}

func TestExportExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.html")
	written, err := NewHTMLExporter("").Export(transcript(t), path)
	require.NoError(t, err)
	assert.Equal(t, path, written)
	assert.FileExists(t, path)
}

func TestExportNeedsDestination(t *testing.T) {
	_, err := NewHTMLExporter("").Export(transcript(t), "")
	assert.Error(t, err)
}
