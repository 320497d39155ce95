package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const configFileName = "config.json"

// UserConfig represents the user's local preferences stored in <config dir>/config.json
type UserConfig struct {
	// SelectedServer is the URL of the server chosen with select-server
	SelectedServer string `json:"selected_server"`
}

// GetConfigPath returns the path to the user config file inside configDir
func GetConfigPath(configDir string) string {
	return filepath.Join(configDir, configFileName)
}

// Load reads the user configuration file
func Load(configDir string) (*UserConfig, error) {
	configPath := GetConfigPath(configDir)

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(configDir string, cfg *UserConfig) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(GetConfigPath(configDir), data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetSelectedServer updates the selected server URL and saves the config
func SetSelectedServer(configDir, serverURL string) error {
	cfg, err := Load(configDir)
	if err != nil {
		return err
	}

	cfg.SelectedServer = serverURL
	return Save(configDir, cfg)
}

// GetSelectedServer returns the selected server URL, or empty string if not set
func GetSelectedServer(configDir string) (string, error) {
	cfg, err := Load(configDir)
	if err != nil {
		return "", err
	}

	return cfg.SelectedServer, nil
}
