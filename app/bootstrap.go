package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"lingchat/config"
	"lingchat/core"
	"lingchat/core/journal"
	"lingchat/export"
	"lingchat/logger"
	"lingchat/maintenance"
	"lingchat/providers/ling"
	"lingchat/ui"
)

// Bootstrap creates and wires all application dependencies.
// Each phase is separate for testability.
func Bootstrap(ctx context.Context) (*Application, error) {
	// 1. Load configuration
	cfg, warnings, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "lingchat: warning: %s\n", w)
	}

	// 2. Open the log file
	log, logCloser, err := logger.New(cfg.LogsDir, cfg.LogLevel, time.Now())
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	slog.SetDefault(log)
	for _, w := range warnings {
		log.Warn("config", "warning", w)
	}

	// 3. Prune old logs and journals
	runCleanup(cfg, log)

	// 4. Backend provider
	prov, err := setupProvider(cfg, log)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("initializing provider: %w", err)
	}

	tags, err := core.NewTagState(cfg.Translation)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("initializing translation tag: %w", err)
	}

	// 5. UI and notifier
	scaffold := ui.NewScaffold()
	notifier := scaffold.GetNotifier()

	// 6. Core session
	session := setupSession(cfg, prov, tags, notifier, log)

	// 7. Pages and status bar
	configureUI(scaffold, session, cfg, prov.URL())

	// 8. Bubble Tea program
	program := setupProgram(scaffold, notifier, session)

	return &Application{
		Config:    cfg,
		Session:   session,
		Scaffold:  scaffold,
		Program:   program,
		Logger:    log,
		logCloser: logCloser,
	}, nil
}

// loadConfig loads configuration from disk, validates it and ensures
// directories exist.
func loadConfig() (config.Config, []string, error) {
	cfg, warnings, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid config %s: %w", cfg.ConfigFilePath(), err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, warnings, nil
}

// runCleanup removes logs and journals past the retention window. Failures
// are logged and never stop startup.
func runCleanup(cfg config.Config, log *slog.Logger) {
	if cfg.RetentionDays == 0 {
		return
	}
	result, err := maintenance.Cleanup(maintenance.CleanupOptions{
		LogsDir:    cfg.LogsDir,
		JournalDir: cfg.JournalDir,
		MaxAge:     cfg.Retention(),
	})
	if err != nil {
		log.Warn("cleanup failed", "error", err)
		return
	}
	for _, e := range result.Errors {
		log.Warn("cleanup", "error", e)
	}
	if n := result.DeletedLogFiles + result.DeletedJournalFiles; n > 0 {
		log.Info("cleaned up old files", "logs", result.DeletedLogFiles, "journals", result.DeletedJournalFiles)
	}
}

// setupProvider creates the Ling dialog backend.
func setupProvider(cfg config.Config, log *slog.Logger) (*ling.Ling, error) {
	return ling.NewLing(cfg.BackendURL, cfg.DialogPath, cfg.ConnectTimeout, log)
}

// setupSession creates the core session with its journal, clipboard and
// exporter.
func setupSession(
	cfg config.Config,
	prov *ling.Ling,
	tags core.TagProvider,
	notifier interface{ Send(tea.Msg) },
	log *slog.Logger,
) *core.Session {
	adapter := &coreNotifierAdapter{ui: notifier, logger: log}

	sessionID := uuid.New().String()
	j, err := journal.Open(sessionID, cfg.JournalDir)
	if err != nil {
		log.Warn("turn journal disabled", "error", err)
		j = nil
	}

	return core.NewSession(sessionID, prov, core.NewConversation(), tags, adapter, log, core.SessionOptions{
		Journal:   j,
		Clipboard: systemClipboard{},
		Exporter:  export.NewHTMLExporter(cfg.ExportsDir),
	})
}

// configureUI sets up scaffold pages and status bar items.
func configureUI(scaffold *ui.Scaffold, session *core.Session, cfg config.Config, backend string) *ui.ChatModel {
	ui.ConfigureDefaultScaffold(scaffold, backend, core.TranslationTags, cfg.Translation)
	return ui.AddDefaultPages(scaffold, session, ui.ChatOptions{
		Scroll:       core.NewScrollGovernor(cfg.ScrollThreshold),
		ScrollMargin: cfg.ScrollMargin,
		GlamourStyle: cfg.GlamourStyle,
	}, commandHelp())
}

// setupProgram creates the Bubble Tea program. The transcript scrolls in
// its own viewport, so the program takes the alternate screen and mouse
// wheel events.
func setupProgram(scaffold *ui.Scaffold, notifier *ui.Notifier, session *core.Session) *tea.Program {
	app := ui.NewApp(scaffold, ui.AppConfig{
		Placeholder: "Ask Ling… (/help for commands)",
		Session:     session,
	})
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	notifier.SetProgram(program)
	return program
}

// systemClipboard writes to the OS clipboard.
type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}
