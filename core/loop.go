package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lingchat/core/journal"
	"lingchat/core/provider"
	"lingchat/core/stream"
	"lingchat/logger"
)

// Notifier interface for UI updates. The Send method accepts any event type;
// the adapter in app/adapter.go translates core events into framework-specific
// messages.
type Notifier interface {
	Send(msg any)
}

// Clipboard receives text copied with /copy.
type Clipboard interface {
	WriteAll(text string) error
}

// Exporter writes the display history somewhere a browser can open it and
// returns the location written. An empty path selects a default location.
type Exporter interface {
	Export(messages []Message, path string) (string, error)
}

// SessionOptions holds the optional collaborators of a Session.
type SessionOptions struct {
	Journal   *journal.Journal // nil disables turn journaling
	Clipboard Clipboard
	Exporter  Exporter
	Clock     func() time.Time
}

// turn is one accepted submission waiting for the loop.
type turn struct {
	id          string
	ctx         context.Context
	cancel      context.CancelFunc
	tag         provider.ChatTag
	assistant   Message
	submittedAt time.Time
}

// turnResult summarizes a finished turn.
type turnResult struct {
	fragments int
	dropped   int
	inserted  bool
	err       error
}

// Session runs dialog turns against the backend, one at a time.
type Session struct {
	provider provider.Provider
	store    *Conversation
	tags     TagProvider
	notifier Notifier
	logger   *slog.Logger

	journal   *journal.Journal
	clipboard Clipboard
	exporter  Exporter
	clock     func() time.Time

	id string

	mu       sync.Mutex
	baseCtx  context.Context
	loading  bool
	cancel   context.CancelFunc // in-flight turn, nil when idle
	turns    chan turn
	stopChan chan struct{} // closed under mu
	loopDone bool          // set under mu once the loop stops taking turns
	stopOnce sync.Once
	wg       sync.WaitGroup // Tracks the loop and the turn it is running
}

// NewSession creates a new dialog session.
func NewSession(
	sessionID string,
	prov provider.Provider,
	store *Conversation,
	tags TagProvider,
	notifier Notifier,
	log *slog.Logger,
	opts SessionOptions,
) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Session{
		provider:  prov,
		store:     store,
		tags:      tags,
		notifier:  notifier,
		logger:    log.With("session", sessionID),
		journal:   opts.Journal,
		clipboard: opts.Clipboard,
		exporter:  opts.Exporter,
		clock:     clock,
		id:        sessionID,
		baseCtx:   context.Background(),
		turns:     make(chan turn, 1), // loading admits at most one pending turn
		stopChan:  make(chan struct{}),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Conversation returns the session's histories.
func (s *Session) Conversation() *Conversation {
	return s.store
}

// Loading reports whether a turn is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Start begins the background turn loop. Turns derive their context from ctx.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop aborts any in-flight turn and waits for the loop to exit. It is safe
// to call multiple times.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		close(s.stopChan)
		s.mu.Unlock()
		s.Abort()
		s.wg.Wait()
		s.drain(context.Canceled)
		if s.journal != nil {
			if err := s.journal.Close(); err != nil {
				s.logger.Error("journal close failed", "error", err)
			}
		}
	})
}

// Abort cancels the in-flight turn, if any. The turn finishes through the
// normal path: loading is cleared and TurnEndEvent is sent.
func (s *Session) Abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// SubmitMessage accepts a user submission. Blank input and input arriving
// while a turn is in flight are rejected and false is returned. Recognized
// slash commands run locally and never reach the backend.
func (s *Session) SubmitMessage(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if cmd, arg, ok := s.lookupCommand(text); ok {
		cmd.run(s, arg)
		return true
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		s.logger.Debug("submission rejected, turn in flight")
		return false
	}
	if s.stoppedLocked() {
		s.mu.Unlock()
		return false
	}
	s.loading = true
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancel = cancel
	s.mu.Unlock()

	now := s.clock()
	t := turn{
		id:          uuid.NewString(),
		ctx:         ctx,
		cancel:      cancel,
		tag:         provider.ChatTag{Translation: s.tags.Translation()},
		submittedAt: now,
	}

	user := NewMessage(provider.RoleUser, text, now)
	index := s.store.AppendUser(user)
	s.notifier.Send(UserMessageEvent{Index: index, Message: user})

	t.assistant = NewMessage(provider.RoleAssistant, "", now)
	s.notifier.Send(TurnStartEvent{TurnID: t.id})

	// The queue check and the send share mu with Stop and with the loop's
	// exit, so an accepted turn is either run, drained or finished here.
	s.mu.Lock()
	queued := false
	if !s.stoppedLocked() {
		select {
		case s.turns <- t:
			queued = true
		default:
		}
	}
	s.mu.Unlock()
	if !queued {
		s.finishTurn(t, turnResult{err: context.Canceled})
	}
	return true
}

// stoppedLocked reports whether new turns can no longer run. Callers hold mu.
func (s *Session) stoppedLocked() bool {
	if s.loopDone {
		return true
	}
	select {
	case <-s.stopChan:
		return true
	default:
		return false
	}
}

// loop is the main goroutine that runs accepted turns in order.
func (s *Session) loop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			s.exitLoop(ctx.Err())
			return
		case <-s.stopChan:
			s.exitLoop(context.Canceled)
			return
		case t := <-s.turns:
			s.wg.Add(1)
			s.finishTurn(t, s.runTurn(t))
			s.wg.Done()
		}
	}
}

// exitLoop stops the loop from taking turns and finishes any turn that was
// queued before that.
func (s *Session) exitLoop(err error) {
	s.mu.Lock()
	s.loopDone = true
	s.mu.Unlock()
	s.drain(err)
}

// drain finishes a turn that was accepted but never started.
func (s *Session) drain(err error) {
	select {
	case t := <-s.turns:
		s.finishTurn(t, turnResult{err: err})
	default:
	}
}

// runTurn sends the wire history and streams the reply into the
// conversation.
func (s *Session) runTurn(t turn) turnResult {
	log := s.logger.With("turn", t.id)
	req := provider.Request{
		Messages: s.store.Wire(),
		ChatTag:  t.tag,
	}
	log.Info("dialog request", "messages", len(req.Messages), "translation", derefTag(t.tag.Translation))

	iter, err := s.provider.Send(t.ctx, req)
	if err != nil {
		return turnResult{err: fmt.Errorf("dialog request failed: %w", err)}
	}
	defer func() {
		if err := iter.Close(); err != nil {
			log.Warn("closing response stream", "error", err)
		}
	}()

	asm := NewAssembler(s.store, t.assistant)
	var res turnResult
	for {
		frame, err := iter.Next()
		if err == io.EOF {
			break
		}
		var decodeErr *stream.DecodeError
		if errors.As(err, &decodeErr) {
			res.dropped++
			log.Warn("dropping malformed frame", "channel", decodeErr.Channel.String(), "error", decodeErr.Err)
			continue
		}
		if err != nil {
			res.inserted = asm.Inserted()
			res.err = fmt.Errorf("stream error: %w", err)
			return res
		}
		if frame.Error != "" {
			log.Warn("backend reported error", "error", frame.Error)
		}

		update, changed, err := asm.Apply(frame)
		if err != nil {
			res.inserted = asm.Inserted()
			res.err = fmt.Errorf("apply fragment: %w", err)
			return res
		}
		if !changed {
			continue
		}
		res.fragments++
		s.notifier.Send(AssistantUpdateEvent{
			Index:    update.Index,
			Message:  update.Message,
			Inserted: update.Inserted,
		})
	}
	res.inserted = asm.Inserted()
	return res
}

// finishTurn clears loading, records the outcome and notifies the UI.
func (s *Session) finishTurn(t turn, res turnResult) {
	aborted := res.err != nil && (errors.Is(res.err, context.Canceled) || t.ctx.Err() != nil)
	t.cancel()

	s.mu.Lock()
	s.loading = false
	s.cancel = nil
	s.mu.Unlock()

	status := journal.StatusCompleted
	log := s.logger.With("turn", t.id)
	switch {
	case aborted:
		status = journal.StatusAborted
		log.Info("turn aborted", "fragments", res.fragments)
	case res.err != nil:
		status = journal.StatusFailed
		log.Error("turn failed", "error", res.err, "fragments", res.fragments)
	default:
		log.Info("turn completed", "fragments", res.fragments, "dropped", res.dropped)
	}

	if s.journal != nil {
		entry := journal.TurnEntry{
			TurnID:      t.id,
			Translation: derefTag(t.tag.Translation),
			Status:      status,
			Fragments:   res.fragments,
			Dropped:     res.dropped,
			Inserted:    res.inserted,
			DurationMS:  s.clock().Sub(t.submittedAt).Milliseconds(),
		}
		if res.err != nil {
			entry.Error = res.err.Error()
		}
		if err := s.journal.Log(entry); err != nil {
			log.Warn("journal write failed", "error", err)
		}
	}

	ev := TurnEndEvent{TurnID: t.id, Aborted: aborted}
	if res.err != nil && !aborted {
		ev.Error = res.err.Error()
	}
	s.notifier.Send(ev)
}

func derefTag(tag *string) string {
	if tag == nil {
		return ""
	}
	return *tag
}
