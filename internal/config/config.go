package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	CatalogBaseURL    string  `toml:"catalog_base_url"`
	UserAgent         string  `toml:"user_agent"`
	Workers           int     `toml:"workers"`
	MaxAttempts       int     `toml:"max_attempts"`
	BaseBackoffMillis int     `toml:"base_backoff_ms"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TokenCount        int     `toml:"token_count"`
	LandVariety       bool    `toml:"land_variety"`
	PageDPI           int     `toml:"page_dpi"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		CatalogBaseURL:    "https://api.scryfall.com",
		UserAgent:         "deckpress/1.0",
		Workers:           4,
		MaxAttempts:       4,
		BaseBackoffMillis: 500,
		RequestsPerSecond: 8,
		TokenCount:        1,
		LandVariety:       true,
		PageDPI:           150,
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "deckpress", "config.toml")
}

// LoadConfig loads the config file, creating it with defaults on first use.
// Keys absent from the file keep their default values.
func LoadConfig() (*Config, error) {
	configPath := GetConfigFilePath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig()
	}

	config := Default()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %v", err)
	}

	return config, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig() (*Config, error) {
	configPath := GetConfigFilePath()
	configDir := filepath.Dir(configPath)

	// Ensure the config directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %v", err)
	}

	config := Default()

	file, err := os.Create(configPath)
	if err != nil {
		return nil, fmt.Errorf("error creating config file: %v", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return nil, fmt.Errorf("error encoding config: %v", err)
	}

	return config, nil
}
