package core

// Core-level events emitted by the turn controller. These are
// framework-agnostic counterparts to the UI message types in ui/messages.go.
// The adapter in app/adapter.go translates them into Bubble Tea messages.

// UserMessageEvent signals a submission was accepted and appended. The UI
// clears its input and scrolls to the bottom unconditionally.
type UserMessageEvent struct {
	Index   int
	Message Message
}

// TurnStartEvent signals the request is about to be dispatched.
type TurnStartEvent struct {
	TurnID string
}

// AssistantUpdateEvent carries the assistant message after a fragment was
// appended. Auto-scroll applies only if the user has not scrolled away.
type AssistantUpdateEvent struct {
	Index    int
	Message  Message
	Inserted bool
}

// TurnEndEvent signals the stream terminated and loading is cleared.
// Error is empty on success.
type TurnEndEvent struct {
	TurnID  string
	Error   string
	Aborted bool
}

// NoticeEvent carries transient command feedback. It never enters the
// transcript.
type NoticeEvent struct {
	Text    string
	IsError bool
}

// TagChangedEvent reports the translation tag in effect ("" for none).
type TagChangedEvent struct {
	Translation string
}

// ConversationClearedEvent signals both histories were emptied.
type ConversationClearedEvent struct{}
