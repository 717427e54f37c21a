package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/daniel/webtoon-agent/internal/script"
	"github.com/daniel/webtoon-agent/internal/workflow"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Generate a panel script from story text",
	Long:  `Turns story text into a structured webtoon script (characters plus panels) through the write-evaluate-rewrite workflow. Output is repaired and schema-validated JSON.`,
	RunE:  runScriptCmd,
}

var (
	scriptConfigPath string
	scriptStoryFile  string
	scriptGenreStyle string
	scriptOut        string
)

func init() {
	scriptCmd.Flags().StringVar(&scriptConfigPath, "config", "", "Path to config.json file")
	scriptCmd.Flags().StringVarP(&scriptStoryFile, "story", "s", "", "Path to the story text file (required)")
	scriptCmd.Flags().StringVarP(&scriptGenreStyle, "genre-style", "g", "", "Visual genre style, e.g. \"modern romance drama manhwa\"")
	scriptCmd.Flags().StringVarP(&scriptOut, "out", "o", "", "Output file for the script JSON (default stdout)")
	_ = scriptCmd.MarkFlagRequired("story")
	rootCmd.AddCommand(scriptCmd)
}

func runScriptCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	storyText, err := os.ReadFile(scriptStoryFile)
	if err != nil {
		return fmt.Errorf("failed to read story file: %w", err)
	}

	cfg, err := loadRunConfig(scriptConfigPath)
	if err != nil {
		return err
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	registry := workflow.NewRegistry()
	engine := workflow.NewEngine[script.Request, *script.Draft](script.NewSteps(client), registry, scriptOptions(cfg))

	snap := engine.Run(ctx, script.Request{Story: string(storyText), GenreStyle: scriptGenreStyle})
	if err := runError(snap); err != nil {
		return err
	}

	draft := snap.Result.(*script.Draft)
	if snap.Score != nil {
		log.Printf("script run %s done: score %.2f, %d panels", snap.RunID, *snap.Score, len(draft.Script.Panels))
	}

	return writeScriptJSON(draft.Script, scriptOut)
}

// writeScriptJSON marshals the script and writes it to path, or stdout when
// path is empty.
func writeScriptJSON(sc *script.Script, path string) error {
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal script: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}
