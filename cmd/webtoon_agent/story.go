package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/daniel/webtoon-agent/internal/source"
	"github.com/daniel/webtoon-agent/internal/story"
	"github.com/daniel/webtoon-agent/internal/workflow"
)

var storyCmd = &cobra.Command{
	Use:   "story [post.json ...]",
	Short: "Generate a webtoon story from a post",
	Long: `Generates story text from a community post through the write-evaluate-rewrite workflow.

The post comes from --title/--content, or from one or more JSON files of the form {"id": ..., "title": ..., "content": ...}. With multiple files, posts are processed concurrently and each story is written next to its input as <name>.story.txt.`,
	RunE: runStoryCmd,
}

var (
	storyConfigPath  string
	storyTitle       string
	storyContent     string
	storyContentFile string
	storyMood        string
	storyOut         string
	storyOutDir      string
	storyConcurrency int
)

func init() {
	storyCmd.Flags().StringVar(&storyConfigPath, "config", "", "Path to config.json file")
	storyCmd.Flags().StringVarP(&storyTitle, "title", "t", "", "Post title (mutually exclusive with post files)")
	storyCmd.Flags().StringVar(&storyContent, "content", "", "Post body text")
	storyCmd.Flags().StringVar(&storyContentFile, "content-file", "", "Path to a file holding the post body")
	storyCmd.Flags().StringVarP(&storyMood, "mood", "m", "", "Story mood: "+strings.Join(story.Moods(), ", "))
	storyCmd.Flags().StringVarP(&storyOut, "out", "o", "", "Output file for a single story (default stdout)")
	storyCmd.Flags().StringVar(&storyOutDir, "out-dir", "", "Output directory for batch mode (default next to each input)")
	storyCmd.Flags().IntVar(&storyConcurrency, "concurrency", 4, "Concurrent runs in batch mode")
	rootCmd.AddCommand(storyCmd)
}

func runStoryCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	if storyMood != "" && !story.ValidMood(storyMood) {
		return fmt.Errorf("unknown mood %q; valid moods: %s", storyMood, strings.Join(story.Moods(), ", "))
	}
	mood := storyMood
	if mood == "" {
		mood = story.DefaultMood
	}

	cfg, err := loadRunConfig(storyConfigPath)
	if err != nil {
		return err
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	registry := workflow.NewRegistry()
	engine := workflow.NewEngine[story.Request, *story.Draft](story.NewSteps(client), registry, storyOptions(cfg))

	if len(args) > 0 {
		if storyTitle != "" {
			return fmt.Errorf("--title and post files are mutually exclusive; provide only one")
		}
		return runStoryBatch(ctx, engine, args)
	}

	if storyTitle == "" {
		return fmt.Errorf("either --title or at least one post file is required")
	}

	content := storyContent
	if storyContentFile != "" {
		data, err := os.ReadFile(storyContentFile)
		if err != nil {
			return fmt.Errorf("failed to read content file: %w", err)
		}
		content = string(data)
	}

	post := &source.Post{ID: "cli", Title: storyTitle, Content: content}
	snap := engine.Run(ctx, story.Request{Post: post, Mood: mood})
	if err := runError(snap); err != nil {
		return err
	}

	draft := snap.Result.(*story.Draft)
	if snap.Score != nil {
		log.Printf("story run %s done: score %.2f", snap.RunID, *snap.Score)
	}

	if storyOut == "" {
		fmt.Println(draft.Story)
		return nil
	}
	return os.WriteFile(storyOut, []byte(draft.Story), 0o644)
}

// runStoryBatch generates stories for several post files concurrently.
func runStoryBatch(ctx context.Context, engine *workflow.Engine[story.Request, *story.Draft], paths []string) error {
	mood := storyMood
	if mood == "" {
		mood = story.DefaultMood
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(storyConcurrency)

	for _, path := range paths {
		g.Go(func() error {
			post, err := loadPostFile(path)
			if err != nil {
				return err
			}

			snap := engine.Run(ctx, story.Request{Post: post, Mood: mood})
			if err := runError(snap); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			draft := snap.Result.(*story.Draft)
			out := storyOutputPath(path, storyOutDir)
			if err := os.WriteFile(out, []byte(draft.Story), 0o644); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			log.Printf("story for %s written to %s", path, out)
			return nil
		})
	}

	return g.Wait()
}

// loadPostFile reads a post from a JSON file.
func loadPostFile(path string) (*source.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read post file %s: %w", path, err)
	}

	var post source.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("failed to parse post file %s: %w", path, err)
	}
	if post.Title == "" {
		return nil, fmt.Errorf("post file %s has no title", path)
	}
	if post.ID == "" {
		post.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &post, nil
}

// storyOutputPath derives the output file for a batch input.
func storyOutputPath(inputPath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + ".story.txt"
	if outDir != "" {
		return filepath.Join(outDir, base)
	}
	return filepath.Join(filepath.Dir(inputPath), base)
}
