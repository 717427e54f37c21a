package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/daniel/webtoon-agent/internal/config"
	"github.com/daniel/webtoon-agent/internal/llm"
	"github.com/daniel/webtoon-agent/internal/workflow"
)

// loadRunConfig loads the optional JSON config file and fills unset values
// with defaults.
func loadRunConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	return cfg.MergeWithDefaults(config.Defaults()), nil
}

// newLLMClient builds the provider client for the configured backend. The
// API key comes from the config file or the provider's environment variable.
func newLLMClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	apiKey := cfg.APIKey

	var modelCfg *llm.Config
	switch cfg.Provider {
	case "openai":
		modelCfg = llm.DefaultOpenAIConfig()
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable or config 'api_key' is required")
		}
	default:
		modelCfg = llm.DefaultGeminiConfig()
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable or config 'api_key' is required")
		}
	}
	modelCfg.BaseURL = cfg.BaseURL

	return llm.NewClient(ctx, modelCfg, apiKey)
}

// storyOptions maps config to the story engine's revision policy.
func storyOptions(cfg config.Config) workflow.Options {
	return workflow.Options{
		Threshold:   cfg.StoryThreshold,
		MaxAttempts: *cfg.StoryMaxRewrites,
		StepTimeout: time.Duration(cfg.StepTimeoutSeconds) * time.Second,
	}
}

// scriptOptions maps config to the script engine's revision policy.
func scriptOptions(cfg config.Config) workflow.Options {
	return workflow.Options{
		Threshold:   cfg.ScriptThreshold,
		MaxAttempts: *cfg.ScriptMaxRewrites,
		StepTimeout: time.Duration(cfg.StepTimeoutSeconds) * time.Second,
	}
}

// runError converts a terminal snapshot into a CLI error, nil for success.
func runError(snap workflow.Snapshot) error {
	if snap.Phase != workflow.PhaseFailed {
		return nil
	}
	if snap.Error != nil {
		return fmt.Errorf("run %s failed (%s): %s", snap.RunID, snap.Error.Category, snap.Error.Message)
	}
	return fmt.Errorf("run %s failed", snap.RunID)
}
