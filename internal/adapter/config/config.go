package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/yourusername/mlearn/internal/domain"
)

// DataDirEnvVar overrides the data directory (config, history, logs).
const DataDirEnvVar = "MLEARN_DATA_DIR"

// DataDir returns the mlearn data directory.
// Uses MLEARN_DATA_DIR env var if set, otherwise ~/.mlearn
func DataDir() string {
	if dir := os.Getenv(DataDirEnvVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mlearn"
	}
	return filepath.Join(home, ".mlearn")
}

// Manager handles configuration persistence.
type Manager struct {
	configPath string
}

// NewManager creates a config manager for <DataDir>/config.toml.
func NewManager() *Manager {
	return NewManagerAt(filepath.Join(DataDir(), "config.toml"))
}

// NewManagerAt creates a config manager for a specific file.
func NewManagerAt(path string) *Manager {
	return &Manager{configPath: path}
}

// Load loads the configuration from disk. A missing file yields the defaults.
func (m *Manager) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(m.configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", m.configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	return cfg, nil
}

// Save saves the configuration to disk.
func (m *Manager) Save(cfg *domain.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file holds an API key
	f, err := os.OpenFile(m.configPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// GetAPIKey returns the configured API key as a domain object.
// MLEARN_API_KEY takes precedence over the file.
func (m *Manager) GetAPIKey(cfg *domain.Config) (*domain.APIKey, error) {
	key := domain.ResolveAPIKey(cfg.AI.APIKey)
	if key == "" {
		return nil, fmt.Errorf("API key not configured. Run 'mlearn config' or set %s", domain.APIKeyEnvVar)
	}

	apiKey, err := domain.NewAPIKey(key, cfg.AI.Provider)
	if err != nil {
		return nil, err
	}

	// Set tier from config
	tier, err := domain.ParseAPITier(cfg.AI.APITier)
	if err != nil {
		tier = domain.TierFree // Default to free
	}
	apiKey.SetTier(tier)

	return apiKey, nil
}

// ConfigPath returns the path to the config file.
func (m *Manager) ConfigPath() string {
	return m.configPath
}
