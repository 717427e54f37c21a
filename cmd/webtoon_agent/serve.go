package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daniel/webtoon-agent/internal/db"
	"github.com/daniel/webtoon-agent/internal/script"
	"github.com/daniel/webtoon-agent/internal/server"
	"github.com/daniel/webtoon-agent/internal/source"
	"github.com/daniel/webtoon-agent/internal/story"
	"github.com/daniel/webtoon-agent/internal/workflow"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for submitting story and script runs and polling their progress.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRunConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	registry := workflow.NewRegistry()
	deps := server.Deps{
		Registry:     registry,
		StoryEngine:  workflow.NewEngine[story.Request, *story.Draft](story.NewSteps(client), registry, storyOptions(cfg)),
		ScriptEngine: workflow.NewEngine[script.Request, *script.Draft](script.NewSteps(client), registry, scriptOptions(cfg)),
	}

	// Post lookup by id is served from a local posts directory when one is
	// configured; requests can always carry the post inline instead.
	if postsDir := os.Getenv("POSTS_DIR"); postsDir != "" {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		deps.Provider = source.NewCachedProvider(source.NewDirProvider(postsDir), ttl)
	}

	// Persistence is optional; without a database the registry alone serves
	// run state.
	databaseURL := cfg.DatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL != "" {
		database, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}

		// Deferred after Connect so the recorder drains before the pool
		// closes.
		recorder := db.NewRecorder(database)
		defer recorder.Close()
		registry.SetObserver(recorder.Observe)
		deps.DB = database
	}

	return server.New(cfg.Port, deps).Start()
}
