package app

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"lingchat/core"
	"lingchat/core/provider"
	"lingchat/ui"
)

// coreNotifierAdapter translates core events into Bubble Tea messages so
// that ui never imports core.
type coreNotifierAdapter struct {
	ui     interface{ Send(tea.Msg) }
	logger *slog.Logger
}

func (a *coreNotifierAdapter) Send(msg any) {
	switch e := msg.(type) {
	case core.UserMessageEvent:
		a.ui.Send(ui.ChatUserMsg{Index: e.Index, Message: messageView(e.Message)})
	case core.TurnStartEvent:
		a.ui.Send(ui.ChatTurnStartMsg{TurnID: e.TurnID})
	case core.AssistantUpdateEvent:
		a.ui.Send(ui.ChatAssistantMsg{Index: e.Index, Message: messageView(e.Message), Inserted: e.Inserted})
	case core.TurnEndEvent:
		a.ui.Send(ui.ChatTurnEndMsg{TurnID: e.TurnID, Error: e.Error, Aborted: e.Aborted})
	case core.NoticeEvent:
		a.ui.Send(ui.ChatNoticeMsg{Text: e.Text, IsError: e.IsError})
	case core.TagChangedEvent:
		a.ui.Send(ui.TagChangedMsg{Translation: e.Translation})
	case core.ConversationClearedEvent:
		a.ui.Send(ui.ChatClearMsg{})
	default:
		// A new core event without a case here is an integration mistake.
		a.logger.Warn("unhandled core event", "type", fmt.Sprintf("%T", msg))
	}
}

// messageView copies a core message into its UI form. Messages without
// recorded parts are plain text.
func messageView(m core.Message) ui.MessageView {
	v := ui.MessageView{
		ID:     m.ID,
		IsUser: m.Role == provider.RoleUser,
		Time:   m.Time,
	}
	if len(m.Parts) == 0 {
		v.Parts = []ui.PartView{{Kind: ui.PartText, Text: m.Content}}
		return v
	}
	v.Parts = make([]ui.PartView, len(m.Parts))
	for i, p := range m.Parts {
		switch p.Kind {
		case core.PartText:
			v.Parts[i] = ui.PartView{Kind: ui.PartText, Text: p.Text}
		case core.PartSidenote:
			v.Parts[i] = ui.PartView{Kind: ui.PartSidenote, Text: p.Text}
		case core.PartRich:
			v.Parts[i] = ui.PartView{
				Kind:     ui.PartRich,
				Type:     p.Payload.Type,
				Language: p.Payload.Language,
				Content:  p.Payload.Content,
				WebText:  p.Payload.WebText,
				Data:     p.Payload.Data,
			}
		}
	}
	return v
}

func commandHelp() []ui.CommandHelp {
	cmds := core.Commands()
	out := make([]ui.CommandHelp, len(cmds))
	for i, c := range cmds {
		out[i] = ui.CommandHelp{Usage: c.Usage, Summary: c.Summary}
	}
	return out
}
