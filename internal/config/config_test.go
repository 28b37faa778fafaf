package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Transport != "http" {
		t.Errorf("Expected transport http, got %s", cfg.Server.Transport)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.ICD10URL != DefaultICD10URL {
		t.Errorf("Expected default ICD-10 URL, got %s", cfg.Upstream.ICD10URL)
	}
	if cfg.Upstream.TimeoutSeconds != 30 {
		t.Errorf("Expected 30s upstream timeout, got %d", cfg.Upstream.TimeoutSeconds)
	}
	if issues := cfg.Validate(); len(issues) > 0 {
		t.Errorf("Default config should validate, got issues: %v", issues)
	}
}

func TestLoadFromFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFile_ParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icd-mcp.toml")
	content := `
[server]
transport = "stdio"
port = 9090

[upstream]
timeout_seconds = 10

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Server.Transport != "stdio" {
		t.Errorf("Expected transport stdio, got %s", cfg.Server.Transport)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.TimeoutSeconds != 10 {
		t.Errorf("Expected timeout 10, got %d", cfg.Upstream.TimeoutSeconds)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unset fields keep defaults
	if cfg.Upstream.NPIURL != DefaultNPIURL {
		t.Errorf("Expected default NPI URL, got %s", cfg.Upstream.NPIURL)
	}
}

func TestLoadFromFile_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("Expected error for invalid TOML")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ICD_MCP_TRANSPORT", "stdio")
	t.Setenv("ICD_MCP_PORT", "4444")
	t.Setenv("ICD_MCP_HOST", "127.0.0.1")
	t.Setenv("ICD_MCP_LOG_LEVEL", "warn")
	t.Setenv("ICD_MCP_UPSTREAM_TIMEOUT", "5")

	cfg, err := LoadFromFile("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Server.Transport != "stdio" {
		t.Errorf("Expected transport stdio, got %s", cfg.Server.Transport)
	}
	if cfg.Server.Port != 4444 {
		t.Errorf("Expected port 4444, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host 127.0.0.1, got %s", cfg.Server.Host)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Upstream.TimeoutSeconds != 5 {
		t.Errorf("Expected timeout 5, got %d", cfg.Upstream.TimeoutSeconds)
	}
}

func TestApplyEnvOverrides_InvalidPortIgnored(t *testing.T) {
	t.Setenv("ICD_MCP_PORT", "not-a-number")

	cfg, err := LoadFromFile("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, 7777, "localhost")
	if cfg.Server.Port != 7777 {
		t.Errorf("Expected port 7777, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected host localhost, got %s", cfg.Server.Host)
	}

	// Zero values leave config untouched
	ApplyFlagOverrides(cfg, 0, "")
	if cfg.Server.Port != 7777 || cfg.Server.Host != "localhost" {
		t.Error("Zero-valued flags must not override config")
	}
}

func TestValidate_ReportsIssues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.Transport = "carrier-pigeon"
	cfg.Server.Port = -1
	cfg.Upstream.ICD10URL = ""
	cfg.Upstream.TimeoutSeconds = 0

	issues := cfg.Validate()
	if len(issues) != 4 {
		t.Errorf("Expected 4 issues, got %d: %v", len(issues), issues)
	}
}
