package app

import (
	"context"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"lingchat/config"
	"lingchat/core"
	"lingchat/ui"
)

// Application holds all wired dependencies and manages the application lifecycle.
type Application struct {
	Config   config.Config
	Session  *core.Session
	Scaffold *ui.Scaffold
	Program  *tea.Program
	Logger   *slog.Logger

	logCloser io.Closer
}

// Run starts the session loop and the terminal UI and blocks until the user
// exits. In-flight turns are aborted on the way out.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.closeLog()

	a.Session.Start(ctx)
	defer a.Session.Stop()

	go func() {
		<-ctx.Done()
		a.Program.Quit()
	}()

	a.Logger.Info("lingchat started", "backend", a.Config.BackendURL, "translation", a.Config.Translation)
	if _, err := a.Program.Run(); err != nil {
		a.Logger.Error("ui exited with error", "error", err)
		return err
	}
	a.Logger.Info("lingchat exiting")
	return nil
}

func (a *Application) closeLog() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}
