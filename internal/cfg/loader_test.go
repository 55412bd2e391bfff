package cfg

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestParse_Flags(t *testing.T) {
	cfg, err := parse([]string{
		"--db-path", "/tmp/test.db",
		"--port", "8080",
		"--selection-timeout", "5",
		"--fallback-category", "Inbox",
		"--worker-count", "2",
		"--log-level", "warn",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected db path '/tmp/test.db', got '%s'", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.SelectionTimeout != 5*time.Second {
		t.Errorf("Expected selection timeout 5s, got %v", cfg.SelectionTimeout)
	}
	if cfg.FallbackCategory != "Inbox" {
		t.Errorf("Expected fallback category 'Inbox', got '%s'", cfg.FallbackCategory)
	}
	if !slices.Contains(cfg.DefaultCategories, "Inbox") {
		t.Errorf("Expected default categories to include the fallback, got %v", cfg.DefaultCategories)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected log level 'warn', got '%s'", cfg.LogLevel)
	}
	if cfg.Version == "" {
		t.Error("Expected version to be set")
	}
}

func TestParse_DebugOverridesLogLevel(t *testing.T) {
	cfg, err := parse([]string{"--debug", "--log-level", "error"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", cfg.LogLevel)
	}
}

func TestParse_RejectsNonPositiveTimeout(t *testing.T) {
	if _, err := parse([]string{"--selection-timeout", "0"}); err == nil {
		t.Error("Expected error for zero selection timeout")
	}
}

func TestParse_RejectsUnknownLogLevel(t *testing.T) {
	if _, err := parse([]string{"--log-level", "verbose"}); err == nil {
		t.Error("Expected error for unknown log level")
	}
}

func TestParse_Help(t *testing.T) {
	cfg, err := parse([]string{"--help"})
	if err != nil {
		t.Errorf("Expected no error for help, got: %v", err)
	}
	if cfg != nil {
		t.Error("Expected nil config for help")
	}
}

func TestBotEnabled(t *testing.T) {
	if (&Cfg{}).BotEnabled() {
		t.Error("Expected bot to be disabled without token")
	}
	if !(&Cfg{TelegramToken: "123:abc"}).BotEnabled() {
		t.Error("Expected bot to be enabled with token")
	}
}

func TestLoadSeedCategories(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "seed.yml")
	os.WriteFile(valid, []byte("categories:\n  - Work\n  - \" Reading \"\n  - \"\"\n"), 0o644)

	names, err := loadSeedCategories(valid, "Uncategorized")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	expected := []string{"Work", "Reading", "Uncategorized"}
	if !slices.Equal(names, expected) {
		t.Errorf("Expected %v, got %v", expected, names)
	}

	empty := filepath.Join(dir, "empty.yml")
	os.WriteFile(empty, []byte("categories: []\n"), 0o644)
	if _, err := loadSeedCategories(empty, "Uncategorized"); err == nil {
		t.Error("Expected error for seed file without categories")
	}

	broken := filepath.Join(dir, "broken.yml")
	os.WriteFile(broken, []byte("categories: [unterminated\n"), 0o644)
	if _, err := loadSeedCategories(broken, "Uncategorized"); err == nil {
		t.Error("Expected error for malformed seed file")
	}

	if _, err := loadSeedCategories(filepath.Join(dir, "missing.yml"), "Uncategorized"); err == nil {
		t.Error("Expected error for missing seed file")
	}
}

func TestLoadSeedCategories_Defaults(t *testing.T) {
	names, err := loadSeedCategories("", "Uncategorized")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !slices.Equal(names, DefaultCategories) {
		t.Errorf("Expected built-in defaults, got %v", names)
	}
}
