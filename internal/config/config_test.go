package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	if cfg.Chat.Bind != ":8001" {
		t.Errorf("Chat.Bind = %q, want :8001", cfg.Chat.Bind)
	}
	if cfg.Sentiment.Bind != ":8000" {
		t.Errorf("Sentiment.Bind = %q, want :8000", cfg.Sentiment.Bind)
	}
	if cfg.Chat.Model != "gemini-1.5-flash" {
		t.Errorf("Chat.Model = %q", cfg.Chat.Model)
	}
	if cfg.Chat.SystemPrompt == "" {
		t.Error("default system prompt is empty")
	}
	if len(cfg.AllowedOrigins) == 0 {
		t.Error("default allowed origins is empty")
	}
}

func TestLoadOrCreateReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	content := `
log_level = "debug"

[chat]
bind = ":9001"
model = "gemini-1.5-pro"
temperature = 0.2
max_tokens = 512
timeout_seconds = 15
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Chat.Bind != ":9001" {
		t.Errorf("Chat.Bind = %q", cfg.Chat.Bind)
	}
	if cfg.Chat.Model != "gemini-1.5-pro" {
		t.Errorf("Chat.Model = %q", cfg.Chat.Model)
	}
	if cfg.Chat.Temperature != 0.2 {
		t.Errorf("Chat.Temperature = %f", cfg.Chat.Temperature)
	}

	// Unset sections keep their defaults.
	if cfg.Sentiment.Bind != ":8000" {
		t.Errorf("Sentiment.Bind = %q, want default", cfg.Sentiment.Bind)
	}
}

func TestLoadOrCreateBlankBindFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	content := `
[chat]
bind = "   "
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Chat.Bind != ":8001" {
		t.Errorf("Chat.Bind = %q, want fallback :8001", cfg.Chat.Bind)
	}
}

func TestGeminiAPIKeyTrimsWhitespace(t *testing.T) {
	t.Setenv(GeminiKeyEnv, "  secret-key \n")

	if got := GeminiAPIKey(); got != "secret-key" {
		t.Errorf("GeminiAPIKey() = %q", got)
	}
}

func TestGeminiAPIKeyAbsent(t *testing.T) {
	t.Setenv(GeminiKeyEnv, "")

	if got := GeminiAPIKey(); got != "" {
		t.Errorf("GeminiAPIKey() = %q, want empty", got)
	}
}
