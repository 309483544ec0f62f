package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BackendURL != "http://127.0.0.1:8080" {
		t.Errorf("BackendURL = %q, want %q", cfg.BackendURL, "http://127.0.0.1:8080")
	}
	if cfg.DialogPath != "/ling/dialog" {
		t.Errorf("DialogPath = %q, want %q", cfg.DialogPath, "/ling/dialog")
	}
	if cfg.Translation != "" {
		t.Errorf("Translation = %q, want empty", cfg.Translation)
	}
	if cfg.ScrollThreshold != 0.9 {
		t.Errorf("ScrollThreshold = %v, want 0.9", cfg.ScrollThreshold)
	}
	if cfg.Retention() != 30*24*time.Hour {
		t.Errorf("Retention() = %v, want 30 days", cfg.Retention())
	}

	for _, dir := range []string{cfg.LogsDir, cfg.ExportsDir, cfg.JournalDir} {
		if filepath.Dir(dir) != cfg.LingDir {
			t.Errorf("%q is not a child of LingDir %q", dir, cfg.LingDir)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadNoFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nonexistent.toml")
	defaults := testDefaults(tmp)

	cfg, warnings, err := LoadFrom(path, defaults)
	if err != nil {
		t.Fatalf("LoadFrom returned error for missing file: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if cfg != defaults {
		t.Errorf("LoadFrom with missing file returned non-default config")
	}
}

func TestLoadValidFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.toml")

	content := `backend_url = "https://kb.example.com"
translation = "en2Zh"
connect_timeout = "2s"
scroll_threshold = 0.75
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	defaults := testDefaults(tmp)
	cfg, warnings, err := LoadFrom(path, defaults)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings for valid keys, got %v", warnings)
	}

	if cfg.BackendURL != "https://kb.example.com" {
		t.Errorf("BackendURL = %q, want %q", cfg.BackendURL, "https://kb.example.com")
	}
	if cfg.Translation != "en2Zh" {
		t.Errorf("Translation = %q, want %q", cfg.Translation, "en2Zh")
	}
	if cfg.ConnectTimeout != 2*time.Second {
		t.Errorf("ConnectTimeout = %v, want 2s", cfg.ConnectTimeout)
	}
	if cfg.ScrollThreshold != 0.75 {
		t.Errorf("ScrollThreshold = %v, want 0.75", cfg.ScrollThreshold)
	}
	// Non-overridden fields keep defaults.
	if cfg.DialogPath != defaults.DialogPath {
		t.Errorf("DialogPath = %q, want default %q", cfg.DialogPath, defaults.DialogPath)
	}
	if cfg.LogsDir != defaults.LogsDir {
		t.Errorf("LogsDir = %q, want default %q", cfg.LogsDir, defaults.LogsDir)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.toml")

	if err := os.WriteFile(path, []byte("this is not [valid toml ="), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := LoadFrom(path, testDefaults(tmp))
	if err == nil {
		t.Fatal("LoadFrom should return error for malformed TOML")
	}
}

func TestLoadUnknownKeys(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.toml")

	content := `backend_url = "http://10.0.0.2:9000"
backend_ulr = "typo"
transaltion = "zh2En"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, warnings, err := LoadFrom(path, testDefaults(tmp))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.BackendURL != "http://10.0.0.2:9000" {
		t.Errorf("BackendURL = %q, want %q", cfg.BackendURL, "http://10.0.0.2:9000")
	}

	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	found := map[string]bool{"backend_ulr": false, "transaltion": false}
	for _, w := range warnings {
		for key := range found {
			if strings.Contains(w, key) {
				found[key] = true
			}
		}
	}
	for key, ok := range found {
		if !ok {
			t.Errorf("expected warning about %q, not found in %v", key, warnings)
		}
	}
}

func TestLoadLingDirOverride(t *testing.T) {
	tmp := t.TempDir()
	customDir := filepath.Join(tmp, "custom-ling")
	customExports := filepath.Join(tmp, "my-exports")
	path := filepath.Join(tmp, "config.toml")

	content := `ling_dir = "` + filepath.ToSlash(customDir) + `"
exports_dir = "` + filepath.ToSlash(customExports) + `"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFrom(path, testDefaults(tmp))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.LingDir != filepath.ToSlash(customDir) {
		t.Errorf("LingDir = %q, want %q", cfg.LingDir, customDir)
	}
	// Sub-dirs not set explicitly follow LingDir.
	if want := filepath.Join(cfg.LingDir, "logs"); cfg.LogsDir != want {
		t.Errorf("LogsDir = %q, want %q", cfg.LogsDir, want)
	}
	if want := filepath.Join(cfg.LingDir, "journal"); cfg.JournalDir != want {
		t.Errorf("JournalDir = %q, want %q", cfg.JournalDir, want)
	}
	// exports_dir was explicitly set and is left alone.
	if cfg.ExportsDir != filepath.ToSlash(customExports) {
		t.Errorf("ExportsDir = %q, want %q", cfg.ExportsDir, customExports)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"https backend", func(c *Config) { c.BackendURL = "https://kb.example.com:8443" }, ""},
		{"zh2En", func(c *Config) { c.Translation = "zh2En" }, ""},
		{"no scheme", func(c *Config) { c.BackendURL = "127.0.0.1:8080" }, "backend_url"},
		{"ftp", func(c *Config) { c.BackendURL = "ftp://host" }, "backend_url"},
		{"empty path", func(c *Config) { c.DialogPath = "" }, "dialog_path"},
		{"unknown tag", func(c *Config) { c.Translation = "fr2De" }, "translation"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"threshold zero", func(c *Config) { c.ScrollThreshold = 0 }, "scroll_threshold"},
		{"threshold above one", func(c *Config) { c.ScrollThreshold = 1.5 }, "scroll_threshold"},
		{"margin", func(c *Config) { c.ScrollMargin = 0 }, "scroll_margin"},
		{"negative timeout", func(c *Config) { c.ConnectTimeout = -time.Second }, "connect_timeout"},
		{"negative retention", func(c *Config) { c.RetentionDays = -1 }, "retention_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testDefaults(t.TempDir())
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureDirs(t *testing.T) {
	tmp := t.TempDir()
	cfg := testDefaults(tmp)

	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	for _, dir := range []string{cfg.LingDir, cfg.LogsDir, cfg.ExportsDir, cfg.JournalDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("directory %q not created: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%q is not a directory", dir)
		}
	}

	// Second call is idempotent.
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs (idempotent) failed: %v", err)
	}
}

func TestConfigFilePath(t *testing.T) {
	cfg := testDefaults(t.TempDir())

	want := filepath.Join(cfg.LingDir, "config.toml")
	if got := cfg.ConfigFilePath(); got != want {
		t.Errorf("ConfigFilePath() = %q, want %q", got, want)
	}
}

// testDefaults returns a Config rooted in a temp directory instead of $HOME.
func testDefaults(tmpDir string) Config {
	return defaultsIn(filepath.Join(tmpDir, ".lingchat"))
}
