package domain

import (
	"fmt"
	"strings"
)

// Git backends available for listing branches of local repositories.
const (
	GitBackendExec  = "exec"
	GitBackendGoGit = "go-git"
)

// Config represents the complete mlearn configuration
type Config struct {
	Version string      `toml:"version"`
	AI      AIConfig    `toml:"ai"`
	Git     GitConfig   `toml:"git"`
	Learn   LearnConfig `toml:"learn"`
	UI      UIConfig    `toml:"ui"`
	Log     LogConfig   `toml:"log"`
}

// AIConfig holds AI provider settings
type AIConfig struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	APITier        string `toml:"api_tier"`
	BaseURL        string `toml:"base_url,omitempty"`
	DefaultModel   string `toml:"default_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

// GitConfig holds settings for reading branches
type GitConfig struct {
	Backend        string `toml:"backend"` // "exec" or "go-git"
	IncludeRemote  bool   `toml:"include_remote"`
	WatchRefs      bool   `toml:"watch_refs"` // refetch branches when local refs change
	FetchTimeoutMS int    `toml:"fetch_timeout_ms"`
}

// LearnConfig controls where learned microagents are written
type LearnConfig struct {
	MicroagentDir string `toml:"microagent_dir"` // relative to a local repository
	OutputDir     string `toml:"output_dir"`     // used for remote repositories
	Overwrite     bool   `toml:"overwrite"`
}

// UIConfig holds UI/theme settings
type UIConfig struct {
	Theme string `toml:"theme"` // Theme name (e.g., "claude-warm", "ocean-blue")
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file,omitempty"`
}

// NewDefaultConfig creates a new config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		AI: AIConfig{
			Provider:       "cerebras",
			APIKey:         "",
			APITier:        "free",
			DefaultModel:   "llama-3.3-70b",
			TimeoutSeconds: 60,
			MaxRetries:     3,
		},
		Git: GitConfig{
			Backend:        GitBackendExec,
			IncludeRemote:  false,
			WatchRefs:      true,
			FetchTimeoutMS: 30000,
		},
		Learn: LearnConfig{
			MicroagentDir: ".openhands/microagents",
			OutputDir:     "",
			Overwrite:     false,
		},
		UI: UIConfig{
			Theme: "claude-warm",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AI.Provider == "" {
		return fmt.Errorf("ai.provider cannot be empty")
	}
	if c.AI.DefaultModel == "" {
		return fmt.Errorf("ai.default_model cannot be empty")
	}
	if _, err := ParseAPITier(c.AI.APITier); err != nil {
		return fmt.Errorf("ai.api_tier: %w", err)
	}
	if c.AI.TimeoutSeconds < 0 || c.AI.MaxRetries < 0 {
		return fmt.Errorf("ai.timeout_seconds and ai.max_retries cannot be negative")
	}

	if c.Git.Backend != GitBackendExec && c.Git.Backend != GitBackendGoGit {
		return fmt.Errorf("git.backend must be '%s' or '%s'", GitBackendExec, GitBackendGoGit)
	}
	if c.Git.FetchTimeoutMS < 0 {
		return fmt.Errorf("git.fetch_timeout_ms cannot be negative")
	}

	if strings.TrimSpace(c.Learn.MicroagentDir) == "" {
		return fmt.Errorf("learn.microagent_dir cannot be empty")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}

	return nil
}

// HasAPIKey reports whether a key is configured or provided through the environment.
func (c *Config) HasAPIKey() bool {
	return ResolveAPIKey(c.AI.APIKey) != ""
}
