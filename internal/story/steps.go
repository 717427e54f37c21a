package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/daniel/webtoon-agent/internal/llm"
	"github.com/daniel/webtoon-agent/internal/prompts"
	"github.com/daniel/webtoon-agent/internal/workflow"
)

// Steps implements the story side of the revision workflow.
type Steps struct {
	client llm.Client
}

func NewSteps(client llm.Client) *Steps {
	return &Steps{client: client}
}

func (s *Steps) Kind() string {
	return "story"
}

// Write expands the seed post into mood-styled novel prose. An empty post
// body falls back to the title so title-only posts still produce a usable
// prompt.
func (s *Steps) Write(ctx context.Context, req Request) (*Draft, error) {
	if req.Post == nil {
		return nil, errors.New("story request has no post")
	}

	content := strings.TrimSpace(req.Post.Content)
	if content == "" {
		content = req.Post.Title
	}

	template := prompts.MustGet("story.json", "write-story")
	prompt := prompts.Format(template, map[string]string{
		"GenreModifier": prompts.MustGet("story.json", moodPromptKey(req.Mood)),
		"Title":         req.Post.Title,
		"Content":       content,
	})

	text, err := s.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("story generation failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("story generation returned empty text")
	}

	return &Draft{Post: req.Post, Mood: req.Mood, Story: text}, nil
}

// evalResponse is the JSON shape the evaluator prompt requests.
type evalResponse struct {
	Score      float64 `json:"score"`
	Coherence  float64 `json:"coherence"`
	Engagement float64 `json:"engagement"`
	Feedback   string  `json:"feedback"`
}

// Evaluate judges a draft against its seed and mood. Provider output that
// cannot be parsed into score+feedback is a hard failure of the step; a
// corrupted score must not feed the revision decision.
func (s *Steps) Evaluate(ctx context.Context, draft *Draft) (*workflow.Evaluation, error) {
	content := strings.TrimSpace(draft.Post.Content)
	if content == "" {
		content = draft.Post.Title
	}

	template := prompts.MustGet("story.json", "evaluate-story")
	prompt := prompts.Format(template, map[string]string{
		"Title":   draft.Post.Title,
		"Content": content,
		"Mood":    draft.Mood,
		"Story":   draft.Story,
	})

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("story evaluation failed: %w", err)
	}

	var resp evalResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &workflow.EvaluationParseError{Content: raw, Cause: err}
	}

	return &workflow.Evaluation{
		Score:    clamp(resp.Score),
		Feedback: resp.Feedback,
		Subscores: map[string]float64{
			"coherence":  clamp(resp.Coherence),
			"engagement": clamp(resp.Engagement),
		},
	}, nil
}

// Rewrite revises the draft's prose against evaluator feedback. The seed
// and mood carry over unchanged.
func (s *Steps) Rewrite(ctx context.Context, draft *Draft, feedback string) (*Draft, error) {
	template := prompts.MustGet("story.json", "rewrite-story")
	prompt := prompts.Format(template, map[string]string{
		"Story":    draft.Story,
		"Feedback": feedback,
	})

	text, err := s.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("story rewrite failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("story rewrite returned empty text")
	}

	return &Draft{Post: draft.Post, Mood: draft.Mood, Story: text}, nil
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
