package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging.format = %q, want json", cfg.Logging.Format)
	}
	if cfg.Logging.Enabled {
		t.Error("logging.enabled should default to false")
	}
	if cfg.Logging.Dir != "logs" {
		t.Errorf("logging.dir = %q, want logs", cfg.Logging.Dir)
	}
	if cfg.Fetch.KeepCache {
		t.Error("fetch.keep_cache should default to false")
	}
	if cfg.Source.GetTimeout() != 5*time.Minute {
		t.Errorf("source timeout = %v, want 5m", cfg.Source.GetTimeout())
	}
	if cfg.Source.CacheDir == "" {
		t.Error("source.cache_dir should have a default")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `source:
  id: user/dataset
  base_url: https://datasets.example.com
  timeout: 30s
fetch:
  dest_base_dir: /data/input
  keep_cache: true
logging:
  level: debug
  format: text
  enabled: true
history:
  enabled: true
  path: /var/lib/datafetch/history.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source.ID != "user/dataset" {
		t.Errorf("source.id = %q", cfg.Source.ID)
	}
	if cfg.Source.BaseURL != "https://datasets.example.com" {
		t.Errorf("source.base_url = %q", cfg.Source.BaseURL)
	}
	if cfg.Source.GetTimeout() != 30*time.Second {
		t.Errorf("source timeout = %v, want 30s", cfg.Source.GetTimeout())
	}
	if cfg.Fetch.DestBaseDir != "/data/input" {
		t.Errorf("fetch.dest_base_dir = %q", cfg.Fetch.DestBaseDir)
	}
	if !cfg.Fetch.KeepCache {
		t.Error("fetch.keep_cache should be true")
	}
	if !cfg.History.Enabled {
		t.Error("history.enabled should be true")
	}
	if cfg.HistoryPath() != "/var/lib/datafetch/history.db" {
		t.Errorf("HistoryPath() = %q", cfg.HistoryPath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "bad log level",
			content: `logging:
  level: verbose
`,
		},
		{
			name: "bad log format",
			content: `logging:
  format: xml
`,
		},
		{
			name: "bad timeout",
			content: `source:
  timeout: soon
`,
		},
		{
			name: "file logging without file name",
			content: `logging:
  enabled: true
  file: ""
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should reject invalid config")
			}
		})
	}
}

func TestHistoryPathDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := filepath.Join(cfg.Source.CacheDir, "history.db")
	if got := cfg.HistoryPath(); got != want {
		t.Errorf("HistoryPath() = %q, want %q", got, want)
	}
}
