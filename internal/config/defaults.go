package config

import "github.com/uh-joan/icd-mcp-server/internal/common"

// Upstream API endpoints. Fixed public data services; overridable only
// through configuration, never per request.
const (
	DefaultICD10URL   = "https://clinicaltables.nlm.nih.gov/api/icd10cm/v3/search"
	DefaultNPIURL     = "https://clinicaltables.nlm.nih.gov/api/npi_idv/v3/search"
	DefaultDatasetURL = "https://data.cms.gov/data-api/v1/dataset"
)

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "http",
			Host:      "0.0.0.0",
			Port:      8080,
		},
		Upstream: UpstreamConfig{
			ICD10URL:       DefaultICD10URL,
			NPIURL:         DefaultNPIURL,
			DatasetURL:     DefaultDatasetURL,
			TimeoutSeconds: 30,
		},
		Logging: common.LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
	}
}
