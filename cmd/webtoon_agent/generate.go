package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daniel/webtoon-agent/internal/observability"
	"github.com/daniel/webtoon-agent/internal/script"
	"github.com/daniel/webtoon-agent/internal/source"
	"github.com/daniel/webtoon-agent/internal/story"
	"github.com/daniel/webtoon-agent/internal/workflow"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full post-to-script pipeline",
	Long:  `Runs both workflows back to back: generates story text from a post, then turns the story into a panel script. Writes story.txt and script.json into the output directory.`,
	RunE:  runGenerateCmd,
}

var (
	genConfigPath string
	genPostFile   string
	genTitle      string
	genContent    string
	genMood       string
	genGenreStyle string
	genOutDir     string
	genVerbose    bool
)

func init() {
	generateCmd.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file")
	generateCmd.Flags().StringVarP(&genPostFile, "post", "p", "", "Path to a post JSON file (mutually exclusive with --title)")
	generateCmd.Flags().StringVarP(&genTitle, "title", "t", "", "Post title (mutually exclusive with --post)")
	generateCmd.Flags().StringVar(&genContent, "content", "", "Post body text")
	generateCmd.Flags().StringVarP(&genMood, "mood", "m", "", "Story mood: "+strings.Join(story.Moods(), ", "))
	generateCmd.Flags().StringVarP(&genGenreStyle, "genre-style", "g", "", "Visual genre style for the script")
	generateCmd.Flags().StringVarP(&genOutDir, "out-dir", "o", "output", "Directory for story.txt and script.json")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print detailed run summaries")
	rootCmd.AddCommand(generateCmd)
}

func runGenerateCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	var post *source.Post
	switch {
	case genPostFile != "" && genTitle != "":
		return fmt.Errorf("--post and --title are mutually exclusive; provide only one")
	case genPostFile != "":
		loaded, err := loadPostFile(genPostFile)
		if err != nil {
			return err
		}
		post = loaded
	case genTitle != "":
		post = &source.Post{ID: "cli", Title: genTitle, Content: genContent}
	default:
		return fmt.Errorf("either --post or --title is required")
	}

	if genMood != "" && !story.ValidMood(genMood) {
		return fmt.Errorf("unknown mood %q; valid moods: %s", genMood, strings.Join(story.Moods(), ", "))
	}
	mood := genMood
	if mood == "" {
		mood = story.DefaultMood
	}

	cfg, err := loadRunConfig(genConfigPath)
	if err != nil {
		return err
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	registry := workflow.NewRegistry()
	storyEngine := workflow.NewEngine[story.Request, *story.Draft](story.NewSteps(client), registry, storyOptions(cfg))
	scriptEngine := workflow.NewEngine[script.Request, *script.Draft](script.NewSteps(client), registry, scriptOptions(cfg))

	if err := os.MkdirAll(genOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)

	storySnap := storyEngine.Run(ctx, story.Request{Post: post, Mood: mood})
	if genVerbose {
		printer.PrintRunSummary(storySnap)
	}
	if err := runError(storySnap); err != nil {
		return err
	}
	storyDraft := storySnap.Result.(*story.Draft)
	if genVerbose {
		printer.PrintStory(storyDraft)
	} else if storySnap.Score != nil {
		log.Printf("story run %s done: score %.2f", storySnap.RunID, *storySnap.Score)
	}

	storyPath := filepath.Join(genOutDir, "story.txt")
	if err := os.WriteFile(storyPath, []byte(storyDraft.Story), 0o644); err != nil {
		return err
	}

	scriptSnap := scriptEngine.Run(ctx, script.Request{Story: storyDraft.Story, GenreStyle: genGenreStyle})
	if genVerbose {
		printer.PrintRunSummary(scriptSnap)
	}
	if err := runError(scriptSnap); err != nil {
		return err
	}
	scriptDraft := scriptSnap.Result.(*script.Draft)
	if genVerbose {
		printer.PrintScript(scriptDraft.Script)
	} else if scriptSnap.Score != nil {
		log.Printf("script run %s done: score %.2f, %d panels",
			scriptSnap.RunID, *scriptSnap.Score, len(scriptDraft.Script.Panels))
	}

	scriptPath := filepath.Join(genOutDir, "script.json")
	if err := writeScriptJSON(scriptDraft.Script, scriptPath); err != nil {
		return err
	}

	fmt.Printf("Story written to %s\nScript written to %s\n", storyPath, scriptPath)
	return nil
}
