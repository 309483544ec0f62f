// Package maintenance prunes old log and turn-journal files.
package maintenance

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DefaultMaxAge is how long logs and journals are kept.
	DefaultMaxAge = 30 * 24 * time.Hour

	logPattern     = "lingchat-*.{log,log.old}"
	journalPattern = "**/turns-*.jsonl"
)

// CleanupOptions configures cleanup behavior.
type CleanupOptions struct {
	// LogsDir holds lingchat-YYYYMMDD.log files.
	LogsDir string

	// JournalDir holds turns-<session>.jsonl files, possibly in subdirectories.
	JournalDir string

	// MaxAge is the maximum age of files to keep (default: 30 days).
	MaxAge time.Duration

	// DryRun reports what would be deleted without deleting.
	DryRun bool

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// CleanupResult contains the results of a cleanup operation.
type CleanupResult struct {
	DeletedLogFiles     int
	DeletedJournalFiles int

	// Errors is a list of non-fatal errors encountered during cleanup.
	// Fatal errors (e.g., directory access failures) are returned as the function error.
	Errors []string
}

// Cleanup deletes log and journal files whose ModTime is older than MaxAge.
// Missing directories are skipped. Individual deletion failures are collected
// in the result rather than aborting the run.
func Cleanup(opts CleanupOptions) (CleanupResult, error) {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	result := CleanupResult{}
	cutoff := now().Add(-opts.MaxAge)

	if opts.LogsDir != "" {
		n, err := prune(opts.LogsDir, logPattern, cutoff, opts.DryRun, &result)
		if err != nil {
			return result, fmt.Errorf("cleanup logs: %w", err)
		}
		result.DeletedLogFiles = n
	}
	if opts.JournalDir != "" {
		n, err := prune(opts.JournalDir, journalPattern, cutoff, opts.DryRun, &result)
		if err != nil {
			return result, fmt.Errorf("cleanup journals: %w", err)
		}
		result.DeletedJournalFiles = n
	}
	return result, nil
}

// prune removes files under dir matching pattern that are older than cutoff.
func prune(dir, pattern string, cutoff time.Time, dryRun bool, result *CleanupResult) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return 0, fmt.Errorf("glob %s: %w", pattern, err)
	}

	deleted := 0
	for _, rel := range matches {
		fi, err := fs.Stat(fsys, rel)
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err != nil {
			if os.IsNotExist(err) {
				// Removed between glob and stat.
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("stat %s: %v", path, err))
			continue
		}
		if fi.IsDir() || !fi.ModTime().Before(cutoff) {
			continue
		}
		if dryRun {
			deleted++
			continue
		}
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("remove %s: %v", path, err))
			continue
		}
		deleted++
	}
	return deleted, nil
}
