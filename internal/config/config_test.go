package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(chatGPTAPIKeyEnv, "")

	cfg := Load()

	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected default level: %q", cfg.Logging.Level)
	}
	if cfg.Broadcast.MaxDurationSeconds != 240 {
		t.Fatalf("unexpected default duration: %d", cfg.Broadcast.MaxDurationSeconds)
	}
	if cfg.ChatGPT.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected default model: %q", cfg.ChatGPT.Model)
	}
	if len(cfg.Sources) == 0 {
		t.Fatal("default sources must not be empty")
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
logging:
  level: debug
broadcast:
  maxDurationSeconds: 180
  prioritySenders:
    - boss@company.com
scheduler:
  timezone: Asia/Shanghai
sources:
  - name: rss
    fetcher: rss
    endpoints:
      - name: blog
        url: https://example.org/blog.xml
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(chatGPTAPIKeyEnv, "")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("file level not applied: %q", cfg.Logging.Level)
	}
	if cfg.Broadcast.MaxDurationSeconds != 180 {
		t.Fatalf("file duration not applied: %d", cfg.Broadcast.MaxDurationSeconds)
	}
	if len(cfg.Broadcast.PrioritySenders) != 1 || cfg.Broadcast.PrioritySenders[0] != "boss@company.com" {
		t.Fatalf("priority senders not applied: %+v", cfg.Broadcast.PrioritySenders)
	}
	// Untouched defaults survive the merge.
	if cfg.ChatGPT.Model != "gpt-4o-mini" {
		t.Fatalf("default model lost in merge: %q", cfg.ChatGPT.Model)
	}
	if cfg.Scheduler.Location().String() != "Asia/Shanghai" {
		t.Fatalf("timezone not bound: %s", cfg.Scheduler.Location())
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Endpoints[0].URL != "https://example.org/blog.xml" {
		t.Fatalf("sources not replaced: %+v", cfg.Sources)
	}
}

func TestLoadEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
database:
  dsn: postgres://file/db
chatgpt:
  apiKey: file-key
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://env/db")
	t.Setenv(chatGPTAPIKeyEnv, "env-key")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env/db" {
		t.Fatalf("env DSN should win: %q", cfg.Database.DSN)
	}
	if cfg.ChatGPT.APIKey != "env-key" {
		t.Fatalf("env API key should win: %q", cfg.ChatGPT.APIKey)
	}
}

func TestLoadUnknownTimezoneFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
scheduler:
  timezone: Not/AZone
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(chatGPTAPIKeyEnv, "")

	cfg := Load()
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("expected UTC fallback, got %s", cfg.Scheduler.Location())
	}
}
