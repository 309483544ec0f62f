package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"lingchat/core"
	"lingchat/logger"
)

// Config holds all lingchat configuration values.
type Config struct {
	// Backend
	BackendURL     string        `toml:"backend_url"`
	DialogPath     string        `toml:"dialog_path"`
	ConnectTimeout time.Duration `toml:"connect_timeout"`

	// Translation tag sent with every turn: "zh2En", "en2Zh" or empty for none.
	Translation string `toml:"translation"`

	LingDir    string `toml:"ling_dir"`
	LogsDir    string `toml:"logs_dir"`
	ExportsDir string `toml:"exports_dir"`
	JournalDir string `toml:"journal_dir"`

	LogLevel string `toml:"log_level"`

	// RetentionDays bounds the age of logs and journals. Zero keeps everything.
	RetentionDays int `toml:"retention_days"`

	// Display
	GlamourStyle string `toml:"glamour_style"`

	// ScrollThreshold is the visible fraction of the bottom region above
	// which the transcript counts as at the bottom.
	ScrollThreshold float64 `toml:"scroll_threshold"`
	// ScrollMargin is the height, in lines, of the bottom region.
	ScrollMargin int `toml:"scroll_margin"`
}

// DefaultConfig returns a Config with all defaults populated.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return defaultsIn(filepath.Join(home, ".lingchat"))
}

func defaultsIn(lingDir string) Config {
	return Config{
		BackendURL:      "http://127.0.0.1:8080",
		DialogPath:      "/ling/dialog",
		ConnectTimeout:  10 * time.Second,
		LingDir:         lingDir,
		LogsDir:         filepath.Join(lingDir, "logs"),
		ExportsDir:      filepath.Join(lingDir, "exports"),
		JournalDir:      filepath.Join(lingDir, "journal"),
		LogLevel:        "info",
		RetentionDays:   30,
		GlamourStyle:    "dark",
		ScrollThreshold: core.DefaultScrollThreshold,
		ScrollMargin:    3,
	}
}

// ConfigFilePath returns the path to the config file inside LingDir.
func (c Config) ConfigFilePath() string {
	return filepath.Join(c.LingDir, "config.toml")
}

// Retention returns RetentionDays as a duration.
func (c Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Load loads configuration from the default location (~/.lingchat/config.toml),
// falling back to defaults if the file does not exist.
// Warnings are returned for unrecognized TOML keys (likely typos).
func Load() (Config, []string, error) {
	defaults := DefaultConfig()
	return LoadFrom(defaults.ConfigFilePath(), defaults)
}

// LoadFrom loads configuration from the given path, overlaying TOML values
// onto the provided defaults. If the file does not exist, defaults are returned
// without error (first-run case). If the file exists but is malformed, an error
// is returned. Warnings are returned for unrecognized TOML keys.
func LoadFrom(path string, defaults Config) (Config, []string, error) {
	cfg := defaults

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil, nil
		}
		return Config{}, nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	// If ling_dir was overridden but sub-dirs were not, re-derive them.
	if meta.IsDefined("ling_dir") {
		if !meta.IsDefined("logs_dir") {
			cfg.LogsDir = filepath.Join(cfg.LingDir, "logs")
		}
		if !meta.IsDefined("exports_dir") {
			cfg.ExportsDir = filepath.Join(cfg.LingDir, "exports")
		}
		if !meta.IsDefined("journal_dir") {
			cfg.JournalDir = filepath.Join(cfg.LingDir, "journal")
		}
	}

	var warnings []string
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown config key: %s", key))
	}

	return cfg, warnings, nil
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("backend_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend_url %q: want http(s)://host[:port]", c.BackendURL)
	}
	if c.DialogPath == "" {
		return fmt.Errorf("dialog_path is empty")
	}
	if c.Translation != "" && !core.ValidTag(c.Translation) {
		return fmt.Errorf("translation %q: want one of %v or empty", c.Translation, core.TranslationTags)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.ScrollThreshold <= 0 || c.ScrollThreshold > 1 {
		return fmt.Errorf("scroll_threshold %v: must be in (0, 1]", c.ScrollThreshold)
	}
	if c.ScrollMargin < 1 {
		return fmt.Errorf("scroll_margin %d: must be at least 1", c.ScrollMargin)
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect_timeout %v: must not be negative", c.ConnectTimeout)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days %d: must not be negative", c.RetentionDays)
	}
	return nil
}

// EnsureDirs creates LingDir, LogsDir, ExportsDir and JournalDir if they do not exist.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.LingDir, c.LogsDir, c.ExportsDir, c.JournalDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}
