// Package config provides configuration loading and validation for the
// service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents settings that can be loaded from a JSON file. All
// fields are optional; missing values fall back to Defaults or environment
// variables resolved by the caller.
type Config struct {
	// Provider
	Provider string `json:"provider,omitempty"` // "gemini" or "openai"
	APIKey   string `json:"api_key,omitempty"`  // provider API key; GOOGLE_API_KEY/OPENAI_API_KEY take effect when empty
	BaseURL  string `json:"base_url,omitempty"` // OpenAI-compatible endpoint override

	// Revision policy
	StoryThreshold    float64 `json:"story_threshold,omitempty"`     // minimum score to accept a story without rewrite
	StoryMaxRewrites  *int    `json:"story_max_rewrites,omitempty"`  // nil uses default; 0 disables rewrites
	ScriptThreshold   float64 `json:"script_threshold,omitempty"`    // minimum score to accept a script without rewrite
	ScriptMaxRewrites *int    `json:"script_max_rewrites,omitempty"` // nil uses default; 0 disables rewrites

	// Timing
	StepTimeoutSeconds int `json:"step_timeout_seconds,omitempty"` // per generative step
	CacheTTLSeconds    int `json:"cache_ttl_seconds,omitempty"`    // source post cache

	// Surfaces
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty disables persistence
	Verbose     bool   `json:"verbose,omitempty"`      // print detailed progress information
}

// Defaults returns the configuration used when no file overrides it.
func Defaults() Config {
	storyRewrites := 1
	scriptRewrites := 2
	return Config{
		Provider:           "gemini",
		StoryThreshold:     7.0,
		StoryMaxRewrites:   &storyRewrites,
		ScriptThreshold:    7.0,
		ScriptMaxRewrites:  &scriptRewrites,
		StepTimeoutSeconds: 120,
		CacheTTLSeconds:    300,
		Port:               8080,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Provider != "" && c.Provider != "gemini" && c.Provider != "openai" {
		return fmt.Errorf("config error: 'provider' must be \"gemini\" or \"openai\", got %q", c.Provider)
	}
	if c.StoryThreshold < 0 || c.StoryThreshold > 10 {
		return fmt.Errorf("config error: 'story_threshold' must be between 0 and 10")
	}
	if c.ScriptThreshold < 0 || c.ScriptThreshold > 10 {
		return fmt.Errorf("config error: 'script_threshold' must be between 0 and 10")
	}
	if c.StoryMaxRewrites != nil && *c.StoryMaxRewrites < 0 {
		return fmt.Errorf("config error: 'story_max_rewrites' must be non-negative")
	}
	if c.ScriptMaxRewrites != nil && *c.ScriptMaxRewrites < 0 {
		return fmt.Errorf("config error: 'script_max_rewrites' must be non-negative")
	}
	if c.StepTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'step_timeout_seconds' must be non-negative")
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("config error: 'cache_ttl_seconds' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be a valid port number")
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.StoryThreshold == 0 {
		result.StoryThreshold = defaults.StoryThreshold
	}
	if result.StoryMaxRewrites == nil {
		result.StoryMaxRewrites = defaults.StoryMaxRewrites
	}
	if result.ScriptThreshold == 0 {
		result.ScriptThreshold = defaults.ScriptThreshold
	}
	if result.ScriptMaxRewrites == nil {
		result.ScriptMaxRewrites = defaults.ScriptMaxRewrites
	}
	if result.StepTimeoutSeconds == 0 {
		result.StepTimeoutSeconds = defaults.StepTimeoutSeconds
	}
	if result.CacheTTLSeconds == 0 {
		result.CacheTTLSeconds = defaults.CacheTTLSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	return result
}
