package script

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/daniel/webtoon-agent/internal/llm"
	"github.com/daniel/webtoon-agent/internal/prompts"
)

// Rewrite revises the script against rubric feedback. The rewritten script
// runs through the same repair-then-validate path as the initial write and
// keeps the original script id, so a revision reads as a new version of
// the same script.
func (s *Steps) Rewrite(ctx context.Context, draft *Draft, feedback string) (*Draft, error) {
	if draft == nil || draft.Script == nil {
		return nil, fmt.Errorf("no script to rewrite")
	}

	original, err := json.Marshal(draft.Script)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize script for rewrite: %w", err)
	}

	template := prompts.MustGet("script.json", "rewrite-script")
	prompt := prompts.Format(template, map[string]string{
		"OriginalScript": string(original),
		"Feedback":       feedback,
		"OriginalStory":  draft.Story,
	})

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("script rewrite failed: %w", err)
	}

	parsed, err := s.parseScript(raw, draft.Script.ScriptID)
	if err != nil {
		return nil, err
	}
	parsed.ScriptID = draft.Script.ScriptID

	return &Draft{Story: draft.Story, GenreStyle: draft.GenreStyle, Script: parsed}, nil
}
