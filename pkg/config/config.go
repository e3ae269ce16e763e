package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the service configuration.
type Config struct {
	Log      LogConfig      `json:"log"`
	HTTPAPI  HTTPAPIConfig  `json:"http_api"`
	MCP      MCPConfig      `json:"mcp"`
	Merge    MergeConfig    `json:"merge"`
	Registry RegistryConfig `json:"registry"`
}

// LogConfig controls the service logger.
type LogConfig struct {
	Level string `json:"level"`
}

// APIClient is a credential record for the HTTP API and MCP surfaces.
type APIClient struct {
	Name    string `json:"name"`
	APIKey  string `json:"api_key"`
	Enabled bool   `json:"enabled"`
}

// HTTPAPIConfig configures the REST surface.
type HTTPAPIConfig struct {
	Enabled bool        `json:"enabled"`
	Host    string      `json:"host"`
	Port    int         `json:"port"`
	Clients []APIClient `json:"clients"`
}

// MCPConfig configures the MCP tool server.
type MCPConfig struct {
	Enabled bool        `json:"enabled"`
	Host    string      `json:"host"`
	Port    int         `json:"port"`
	Clients []APIClient `json:"clients"`
}

// MergeConfig carries the display-cap defaults for merge requests.
type MergeConfig struct {
	DefaultMaxRows int `json:"default_max_rows"`
	MaxRowsCap     int `json:"max_rows_cap"`
}

// RegistryConfig bounds the in-memory dataset registry.
type RegistryConfig struct {
	MaxDatasets       int `json:"max_datasets"`
	MaxRowsPerDataset int `json:"max_rows_per_dataset"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		HTTPAPI: HTTPAPIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8090,
		},
		MCP: MCPConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8091,
		},
		Merge: MergeConfig{
			DefaultMaxRows: 500,
			MaxRowsCap:     5000,
		},
		Registry: RegistryConfig{
			MaxDatasets:       64,
			MaxRowsPerDataset: 200000,
		},
	}
}

// LoadConfig loads configuration from a JSON file layered over the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigOrDefault tries the DATAMERGE_CONFIG env var and common file
// locations, falling back to the defaults.
func LoadConfigOrDefault() *Config {
	possiblePaths := []string{
		"config.json",
		"./config/config.json",
		"/etc/datamerge/config.json",
	}

	if envPath := os.Getenv("DATAMERGE_CONFIG"); envPath != "" {
		if config, err := LoadConfig(envPath); err == nil {
			return config
		}
	}

	for _, path := range possiblePaths {
		if absPath, err := filepath.Abs(path); err == nil {
			if config, err := LoadConfig(absPath); err == nil {
				return config
			}
		}
	}

	return DefaultConfig()
}

func validateConfig(config *Config) error {
	if config.HTTPAPI.Enabled && (config.HTTPAPI.Port < 1 || config.HTTPAPI.Port > 65535) {
		return fmt.Errorf("invalid http api port: %d", config.HTTPAPI.Port)
	}
	if config.MCP.Enabled && (config.MCP.Port < 1 || config.MCP.Port > 65535) {
		return fmt.Errorf("invalid mcp port: %d", config.MCP.Port)
	}
	if config.Merge.DefaultMaxRows < 1 {
		return fmt.Errorf("merge default_max_rows must be positive")
	}
	if config.Merge.MaxRowsCap < config.Merge.DefaultMaxRows {
		return fmt.Errorf("merge max_rows_cap must be >= default_max_rows")
	}
	if config.Registry.MaxDatasets < 1 {
		return fmt.Errorf("registry max_datasets must be positive")
	}
	return nil
}

// Address returns the host:port listen address for the HTTP API.
func (c *HTTPAPIConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the host:port listen address for the MCP server.
func (c *MCPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
