// Package provider defines the dialog backend abstraction for lingchat.
// It contains only interfaces and data types, no implementation.
package provider

import (
	"context"
	"fmt"

	"lingchat/core/stream"
)

// Role identifies who authored a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// WireMessage is a transcript entry as the backend accepts it.
type WireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Time    string `json:"time"`
	IsHTML  bool   `json:"isHtml"`
}

// ChatTag carries per-turn options. A nil Translation is sent as JSON null.
type ChatTag struct {
	Translation *string `json:"translation"`
}

// Request is the body of one dialog turn.
type Request struct {
	Messages []WireMessage `json:"messages"`
	ChatTag  ChatTag       `json:"chatTag"`
}

// FrameIterator yields parsed frames from a streamed response.
// Callers loop on Next() until it returns io.EOF. A *stream.DecodeError from
// Next is not fatal: the line was dropped and iteration may continue.
type FrameIterator interface {
	Next() (stream.Frame, error)
	Close() error
}

// Provider is the backend abstraction that the turn controller consumes.
type Provider interface {
	Send(ctx context.Context, req Request) (FrameIterator, error)
}

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider: backend returned %s", e.Status)
}
