package core

import (
	"lingchat/core/render"
	"lingchat/core/stream"
)

// Update describes one visible change to the in-flight assistant message.
type Update struct {
	Index    int     // display index of the assistant message
	Message  Message // copy of the message after the change
	Inserted bool    // the message entered the histories with this change
}

// Assembler owns the assistant message of a single turn. The message is
// inserted into the conversation only when the first non-empty fragment
// arrives, so a turn that produces nothing leaves no empty entry behind.
type Assembler struct {
	store *Conversation
	msg   Message
	index int
}

// NewAssembler prepares pending as the turn's assistant message.
func NewAssembler(store *Conversation, pending Message) *Assembler {
	return &Assembler{store: store, msg: pending.Clone(), index: -1}
}

// Apply appends the fragment carried by f. It reports false when f produced
// nothing to show: sentinels, ignored lines, empty deltas and empty rich
// fragments.
func (a *Assembler) Apply(f stream.Frame) (Update, bool, error) {
	if f.Ignored() {
		return Update{}, false, nil
	}

	var part Part
	switch f.Channel {
	case stream.ChannelData:
		if f.Text == "" {
			return Update{}, false, nil
		}
		part = Part{Kind: PartText, Text: f.Text}
	case stream.ChannelSidenote:
		part = Part{Kind: PartSidenote, Text: f.Text, Markup: render.Sidenote(f.Text)}
	case stream.ChannelRich:
		markup := render.Fragment(f.Payload)
		if markup == "" {
			return Update{}, false, nil
		}
		part = Part{Kind: PartRich, Payload: f.Payload, Markup: markup}
	default:
		return Update{}, false, nil
	}

	inserted := false
	if a.index < 0 {
		// The wire snapshot is taken here, before any content lands.
		a.index = a.store.AppendAssistant(a.msg)
		inserted = true
	}
	a.msg.append(part)
	if err := a.store.ReplaceAssistant(a.index, a.msg); err != nil {
		return Update{}, false, err
	}
	return Update{Index: a.index, Message: a.msg.Clone(), Inserted: inserted}, true, nil
}

// Inserted reports whether the assistant message has entered the histories.
func (a *Assembler) Inserted() bool {
	return a.index >= 0
}

// Message returns a copy of the assistant message as assembled so far.
func (a *Assembler) Message() Message {
	return a.msg.Clone()
}
