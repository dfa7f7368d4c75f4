package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestGetConfigDir validates config directory access
func TestGetConfigDir(t *testing.T) {
	tempDir := t.TempDir()
	if err := Init(filepath.Join(tempDir, "test_config")); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	configDir := GetConfigDir()
	if configDir == "" {
		t.Fatal("Config directory should not be empty")
	}

	if _, err := os.Stat(configDir); err != nil {
		t.Errorf("Config directory should exist: %v", err)
	}
}

// TestInitWithCustomPath validates custom config path
func TestInitWithCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	customConfigPath := filepath.Join(tempDir, "custom", "path", "config.toml")

	if err := Init(customConfigPath); err != nil {
		t.Fatalf("Failed to initialize with custom path: %v", err)
	}

	expectedDir := filepath.Join(tempDir, "custom", "path")
	if GetConfigDir() != expectedDir {
		t.Errorf("Expected config dir %s, got %s", expectedDir, GetConfigDir())
	}
	if GetConfigFilePath() != customConfigPath {
		t.Errorf("Expected config file %s, got %s", customConfigPath, GetConfigFilePath())
	}
}

// TestDefaults validates every default the controllers and backends rely on
func TestDefaults(t *testing.T) {
	tempDir := t.TempDir()
	if err := Init(filepath.Join(tempDir, "config.toml")); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	stringCases := map[string]string{
		"api.base_url":    "http://localhost:54321",
		"output.format":   "text",
		"log.level":       "info",
		"storage.backend": "file",
	}
	for key, want := range stringCases {
		if got := GetString(key); got != want {
			t.Errorf("%s: expected %q, got %q", key, want, got)
		}
	}

	intCases := map[string]int{
		"api.timeout":     30,
		"feed.page_size":  10,
		"log.max_backups": 3,
	}
	for key, want := range intCases {
		if got := GetInt(key); got != want {
			t.Errorf("%s: expected %d, got %d", key, want, got)
		}
	}

	if got := GetSeconds("api.timeout"); got != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", got)
	}
}

// TestLogFileUnderConfigDir validates the log file default follows the config dir
func TestLogFileUnderConfigDir(t *testing.T) {
	tempDir := t.TempDir()
	if err := Init(filepath.Join(tempDir, "config.toml")); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	logFile := GetString("log.file")
	if filepath.Dir(logFile) != tempDir {
		t.Errorf("Expected log file under %s, got %s", tempDir, logFile)
	}
}

// TestUserConfigOverridesDefaults validates values read from the TOML file
func TestUserConfigOverridesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")
	contents := "[feed]\npage_size = 25\n\n[storage]\nbackend = \"sqlite\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if err := Init(configPath); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if got := GetInt("feed.page_size"); got != 25 {
		t.Errorf("Expected page size 25, got %d", got)
	}
	if got := GetString("storage.backend"); got != "sqlite" {
		t.Errorf("Expected sqlite backend, got %s", got)
	}
}

// TestEnvOverride validates QUILL_* environment overrides
func TestEnvOverride(t *testing.T) {
	t.Setenv("QUILL_API_BASE_URL", "https://example.supabase.co")

	tempDir := t.TempDir()
	if err := Init(filepath.Join(tempDir, "config.toml")); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if got := GetString("api.base_url"); got != "https://example.supabase.co" {
		t.Errorf("Expected env override, got %s", got)
	}
}

// TestCredentialsPathStructure validates credentials path structure
func TestCredentialsPathStructure(t *testing.T) {
	tempDir := t.TempDir()
	if err := Init(filepath.Join(tempDir, "test_config")); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	credsPath := GetCredentialsPath()
	if !filepath.IsAbs(credsPath) {
		t.Error("Credentials path should be absolute")
	}
	if filepath.Dir(credsPath) != GetConfigDir() {
		t.Errorf("Credentials path %s should be under config dir %s", credsPath, GetConfigDir())
	}
}

// TestSetStringPersists validates SetString writes the user config file
func TestSetStringPersists(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")
	if err := Init(configPath); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if err := SetString("output.format", "json"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}

	if err := Init(configPath); err != nil {
		t.Fatalf("Re-init failed: %v", err)
	}
	if got := GetString("output.format"); got != "json" {
		t.Errorf("Expected persisted format json, got %s", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandPath("~/quill.log"); got != filepath.Join(home, "quill.log") {
		t.Errorf("Expected tilde expansion, got %s", got)
	}
	if got := expandPath("/var/log/quill.log"); got != "/var/log/quill.log" {
		t.Errorf("Absolute path should be unchanged, got %s", got)
	}
}
