package core

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// command is a slash command handled locally by the session.
type command struct {
	name    string
	usage   string
	summary string
	run     func(s *Session, arg string)
}

func commandTable() []command {
	return []command{
		{"/clear", "/clear", "start a new conversation", (*Session).cmdClear},
		{"/copy", "/copy", "copy the last reply as plain text", (*Session).cmdCopy},
		{"/export", "/export [path]", "write the transcript as HTML", (*Session).cmdExport},
		{"/help", "/help", "list commands", (*Session).cmdHelp},
		{"/tag", "/tag [zh2En|en2Zh|off]", "toggle the translation tag", (*Session).cmdTag},
	}
}

// CommandInfo describes a slash command for help listings.
type CommandInfo struct {
	Usage   string
	Summary string
}

// Commands lists the slash commands in display order.
func Commands() []CommandInfo {
	table := commandTable()
	out := make([]CommandInfo, len(table))
	for i, c := range table {
		out[i] = CommandInfo{Usage: c.usage, Summary: c.summary}
	}
	return out
}

// lookupCommand splits text into a known command and its argument.
func (s *Session) lookupCommand(text string) (command, string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return command{}, "", false
	}
	name, arg, _ := strings.Cut(text, " ")
	for _, c := range commandTable() {
		if c.name == name {
			return c, strings.TrimSpace(arg), true
		}
	}
	return command{}, "", false
}

// Completions returns the commands starting with prefix, sorted.
func (s *Session) Completions(prefix string) []string {
	if !strings.HasPrefix(prefix, "/") || strings.Contains(prefix, " ") {
		return nil
	}
	var out []string
	for _, c := range commandTable() {
		if strings.HasPrefix(c.name, prefix) {
			out = append(out, c.name)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Session) notice(format string, args ...any) {
	s.notifier.Send(NoticeEvent{Text: fmt.Sprintf(format, args...)})
}

func (s *Session) noticeError(format string, args ...any) {
	s.notifier.Send(NoticeEvent{Text: fmt.Sprintf(format, args...), IsError: true})
}

func (s *Session) cmdClear(string) {
	if s.Loading() {
		s.noticeError("cannot clear while a reply is streaming")
		return
	}
	s.store.Reset()
	s.logger.Info("conversation cleared")
	s.notifier.Send(ConversationClearedEvent{})
}

func (s *Session) cmdCopy(string) {
	if s.clipboard == nil {
		s.noticeError("clipboard unavailable")
		return
	}
	msg, ok := s.store.LastAssistant()
	if !ok {
		s.noticeError("nothing to copy yet")
		return
	}
	text := msg.PlainText()
	if err := s.clipboard.WriteAll(text); err != nil {
		s.logger.Warn("clipboard write failed", "error", err)
		s.noticeError("copy failed: %v", err)
		return
	}
	s.notice("copied %d characters", utf8.RuneCountInString(text))
}

func (s *Session) cmdExport(path string) {
	if s.exporter == nil {
		s.noticeError("export unavailable")
		return
	}
	msgs := s.store.Display()
	if len(msgs) == 0 {
		s.noticeError("nothing to export yet")
		return
	}
	written, err := s.exporter.Export(msgs, path)
	if err != nil {
		s.logger.Warn("export failed", "error", err)
		s.noticeError("export failed: %v", err)
		return
	}
	s.logger.Info("transcript exported", "path", written, "messages", len(msgs))
	s.notice("exported %d messages to %s", len(msgs), written)
}

func (s *Session) cmdHelp(string) {
	var parts []string
	for _, c := range Commands() {
		parts = append(parts, c.Usage+": "+c.Summary)
	}
	s.notice("%s", strings.Join(parts, " · "))
}

func (s *Session) cmdTag(arg string) {
	sel, ok := s.tags.(TagSelector)
	if !ok {
		s.noticeError("translation tag is fixed for this session")
		return
	}
	switch arg {
	case "":
		s.notice("translation: %s", tagLabel(derefTag(sel.Translation())))
		return
	case "off", "none":
		sel.Clear()
	default:
		if _, err := sel.Toggle(arg); err != nil {
			s.noticeError("%v (want %s)", err, strings.Join(TranslationTags, " or "))
			return
		}
	}
	current := derefTag(sel.Translation())
	s.logger.Info("translation tag changed", "translation", current)
	s.notifier.Send(TagChangedEvent{Translation: current})
}

func tagLabel(tag string) string {
	if tag == "" {
		return "off"
	}
	return tag
}
