package ui

import (
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// UpdateMsg asks the scaffold to re-render.
type UpdateMsg struct{}

// Notifier carries messages from background goroutines into the Bubble Tea
// loop.
//
// Notify queues an idempotent re-render; a full queue drops it because the
// next render shows current state anyway. Send delivers a data-carrying
// message through tea.Program.Send and waits until SetProgram was called,
// so events published during startup are not lost.
type Notifier struct {
	rcv       chan any
	listening bool
	mu        sync.Mutex
	program   *tea.Program
	ready     sync.WaitGroup
	readyOnce sync.Once
}

func newNotifier() *Notifier {
	n := &Notifier{rcv: make(chan any, 256)}
	n.ready.Add(1)
	return n
}

// SetProgram attaches the running program. Call it once after
// tea.NewProgram and before Run.
func (n *Notifier) SetProgram(p *tea.Program) {
	n.readyOnce.Do(func() {
		n.program = p
		n.ready.Done()
	})
}

// Listen returns a command that waits for the next queued message. Only one
// listener is outstanding at a time.
func (n *Notifier) Listen() tea.Cmd {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listening {
		return nil
	}
	n.listening = true

	return func() tea.Msg {
		msg := <-n.rcv
		n.mu.Lock()
		n.listening = false
		n.mu.Unlock()
		return msg
	}
}

// Notify queues an UpdateMsg.
func (n *Notifier) Notify() {
	select {
	case n.rcv <- UpdateMsg{}:
	default:
	}
}

// Send delivers msg to the program. Without a program, msg goes to the
// Listen queue.
func (n *Notifier) Send(msg tea.Msg) {
	n.ready.Wait()
	if n.program != nil {
		n.program.Send(msg)
		return
	}
	select {
	case n.rcv <- msg:
	default:
		slog.Warn("notifier dropped message, queue full", "type", fmt.Sprintf("%T", msg))
	}
}
