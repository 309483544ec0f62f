package provider

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingchat/core/stream"
)

// mockIterator is a minimal FrameIterator that returns EOF immediately.
type mockIterator struct{}

func (m *mockIterator) Next() (stream.Frame, error) { return stream.Frame{}, io.EOF }
func (m *mockIterator) Close() error                { return nil }

// mockProvider is a minimal Provider implementation for compile-time checks.
type mockProvider struct{}

func (m *mockProvider) Send(_ context.Context, _ Request) (FrameIterator, error) {
	return &mockIterator{}, nil
}

var _ Provider = (*mockProvider)(nil)
var _ FrameIterator = (*mockIterator)(nil)

func TestRequestWireShape(t *testing.T) {
	req := Request{
		Messages: []WireMessage{
			{Role: RoleUser, Content: "hi", Time: "09:30"},
			{Role: RoleAssistant, Content: "", Time: "09:30"},
		},
	}

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"messages": [
			{"role":"user","content":"hi","time":"09:30","isHtml":false},
			{"role":"assistant","content":"","time":"09:30","isHtml":false}
		],
		"chatTag": {"translation": null}
	}`, string(raw))

	tag := "zh2En"
	req.ChatTag.Translation = &tag
	raw, err = json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"chatTag":{"translation":"zh2En"}`)
}

func TestStatusError(t *testing.T) {
	err := error(&StatusError{StatusCode: 502, Status: "502 Bad Gateway"})
	assert.EqualError(t, err, "provider: backend returned 502 Bad Gateway")
}
