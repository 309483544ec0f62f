// Package journal records one JSON line per dialog turn. Entries carry turn
// metadata only, never message content.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Turn outcomes.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusAborted   = "aborted"
)

// FilePattern matches journal files inside the journal directory.
const FilePattern = "turns-*.jsonl"

// TurnEntry is a single journal record (JSON-lines format).
type TurnEntry struct {
	Timestamp   string `json:"timestamp"` // RFC3339
	SessionID   string `json:"session_id"`
	TurnID      string `json:"turn_id"`
	Translation string `json:"translation,omitempty"`
	Status      string `json:"status"`
	Fragments   int    `json:"fragments"`
	Dropped     int    `json:"dropped"`  // malformed lines skipped
	Inserted    bool   `json:"inserted"` // assistant message appeared
	DurationMS  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}

// Journal appends turn entries to a session-specific JSON-lines file.
type Journal struct {
	mu        sync.Mutex
	file      *os.File
	path      string
	sessionID string
}

// Open creates a journal for the given session under dir.
func Open(sessionID, dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	path := filepath.Join(dir, fileName(sessionID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	return &Journal{
		file:      file,
		path:      path,
		sessionID: sessionID,
	}, nil
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	return j.path
}

// Log writes an entry, stamping session ID and time.
func (j *Journal) Log(entry TurnEntry) error {
	entry.SessionID = j.sessionID
	entry.Timestamp = time.Now().UTC().Format(time.RFC3339)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal turn entry: %w", err)
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return fmt.Errorf("journal closed")
	}
	if _, err := j.file.Write(data); err != nil {
		return fmt.Errorf("write turn entry: %w", err)
	}
	return nil
}

// Close flushes and closes the journal file. Safe to call more than once.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}
	if err := j.file.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	j.file = nil
	return nil
}

// Read returns all entries recorded for a session.
func Read(sessionID, dir string) ([]TurnEntry, error) {
	data, err := os.ReadFile(filepath.Join(dir, fileName(sessionID)))
	if err != nil {
		if os.IsNotExist(err) {
			return []TurnEntry{}, nil
		}
		return nil, fmt.Errorf("read journal: %w", err)
	}

	var entries []TurnEntry
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry TurnEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("parse turn entry line %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func fileName(sessionID string) string {
	return fmt.Sprintf("turns-%s.jsonl", sessionID)
}
