package ui

// PartKind mirrors the fragment kinds of an assistant message.
type PartKind int

const (
	PartText PartKind = iota
	PartSidenote
	PartRich
)

// PartView is one fragment of a message as the chat page renders it.
// The adapter fills it from core types so that ui never imports core.
type PartView struct {
	Kind PartKind
	Text string // PartText and PartSidenote

	// PartRich only
	Type     string // "code", "image", "table", "link" or anything else
	Language string
	Content  string
	WebText  string
	Data     [][]string
}

// MessageView is one transcript entry.
type MessageView struct {
	ID     string
	IsUser bool
	Time   string
	Parts  []PartView
}

// ChatUserMsg carries an accepted submission at its transcript index.
type ChatUserMsg struct {
	Index   int
	Message MessageView
}

// ChatTurnStartMsg signals the request is being dispatched.
type ChatTurnStartMsg struct {
	TurnID string
}

// ChatAssistantMsg carries the assistant message after a fragment arrived.
// Inserted is set on the first fragment of the turn.
type ChatAssistantMsg struct {
	Index    int
	Message  MessageView
	Inserted bool
}

// ChatTurnEndMsg signals the stream is finished. Error is empty on success.
type ChatTurnEndMsg struct {
	TurnID  string
	Error   string
	Aborted bool
}

// ChatNoticeMsg is transient command feedback shown under the transcript.
// It is never part of the conversation.
type ChatNoticeMsg struct {
	Text    string
	IsError bool
}

// ChatClearMsg instructs the chat page to drop its transcript.
type ChatClearMsg struct{}

// TagChangedMsg reports the translation tag in effect ("" for none).
type TagChangedMsg struct {
	Translation string
}
