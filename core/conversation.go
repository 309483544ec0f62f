package core

import (
	"fmt"
	"sync"

	"lingchat/core/provider"
)

// Conversation holds the display history shown to the user and the wire
// history sent to the backend. Both grow in the order operations are issued.
type Conversation struct {
	mu      sync.Mutex
	display []Message
	wire    []provider.WireMessage
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// AppendUser appends a user message to both histories and returns its
// display index.
func (c *Conversation) AppendUser(m Message) int {
	return c.appendBoth(m)
}

// AppendAssistant appends an assistant message to the display history and a
// snapshot of it to the wire history. The snapshot is never updated.
func (c *Conversation) AppendAssistant(m Message) int {
	return c.appendBoth(m)
}

func (c *Conversation) appendBoth(m Message) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.display = append(c.display, m.Clone())
	c.wire = append(c.wire, m.Snapshot())
	return len(c.display) - 1
}

// ReplaceAssistant swaps the live display entry at index for m.
func (c *Conversation) ReplaceAssistant(index int, m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.display) {
		return fmt.Errorf("replace message %d: index out of range (have %d)", index, len(c.display))
	}
	if c.display[index].Role != provider.RoleAssistant {
		return fmt.Errorf("replace message %d: not an assistant message", index)
	}
	c.display[index] = m.Clone()
	return nil
}

// Display returns a copy of the display history.
func (c *Conversation) Display() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.display))
	for i, m := range c.display {
		out[i] = m.Clone()
	}
	return out
}

// Wire returns a copy of the wire history.
func (c *Conversation) Wire() []provider.WireMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]provider.WireMessage{}, c.wire...)
}

// LastAssistant returns the most recent assistant message in the display
// history.
func (c *Conversation) LastAssistant() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.display) - 1; i >= 0; i-- {
		if c.display[i].Role == provider.RoleAssistant {
			return c.display[i].Clone(), true
		}
	}
	return Message{}, false
}

// Len returns the number of display entries.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.display)
}

// Reset empties both histories.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.display = nil
	c.wire = nil
}
