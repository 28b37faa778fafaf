// Package config loads gateway configuration from TOML files, environment
// variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/uh-joan/icd-mcp-server/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig         `toml:"server"`
	Upstream UpstreamConfig       `toml:"upstream"`
	Logging  common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains transport settings.
// Transport is "http" (default) or "stdio".
type ServerConfig struct {
	Transport string `toml:"transport"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
}

// UpstreamConfig contains the upstream API endpoints and the per-call timeout.
// Base URLs are configurable so tests can point at stub servers; per request
// they are fixed.
type UpstreamConfig struct {
	ICD10URL       string `toml:"icd10_url"`
	NPIURL         string `toml:"npi_url"`
	DatasetURL     string `toml:"dataset_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// A missing file is not an error; defaults and env still apply.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else {
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies ICD_MCP_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if transport := os.Getenv("ICD_MCP_TRANSPORT"); transport != "" {
		config.Server.Transport = transport
	}
	if port := os.Getenv("ICD_MCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ICD_MCP_HOST"); host != "" {
		config.Server.Host = host
	}
	if level := os.Getenv("ICD_MCP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if timeout := os.Getenv("ICD_MCP_UPSTREAM_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.Upstream.TimeoutSeconds = t
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate reports configuration problems as human-readable issues.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Transport != "http" && c.Server.Transport != "stdio" {
		issues = append(issues, fmt.Sprintf("server.transport must be \"http\" or \"stdio\", got %q", c.Server.Transport))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Upstream.ICD10URL == "" {
		issues = append(issues, "upstream.icd10_url must not be empty")
	}
	if c.Upstream.NPIURL == "" {
		issues = append(issues, "upstream.npi_url must not be empty")
	}
	if c.Upstream.DatasetURL == "" {
		issues = append(issues, "upstream.dataset_url must not be empty")
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		issues = append(issues, fmt.Sprintf("upstream.timeout_seconds must be positive, got %d", c.Upstream.TimeoutSeconds))
	}
	return issues
}
