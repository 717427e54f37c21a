package script

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/daniel/webtoon-agent/internal/llm"
	"github.com/daniel/webtoon-agent/internal/prompts"
	"github.com/daniel/webtoon-agent/internal/repair"
	"github.com/daniel/webtoon-agent/internal/schemas"
	"github.com/daniel/webtoon-agent/internal/workflow"
)

// DefaultGenreStyle is applied when a request does not name a style.
const DefaultGenreStyle = "modern romance drama manhwa"

// Steps implements the script side of the revision workflow.
type Steps struct {
	client llm.Client
	rubric Rubric
}

func NewSteps(client llm.Client) *Steps {
	return &Steps{client: client, rubric: DefaultRubric()}
}

// NewStepsWithRubric overrides the evaluation rubric, typically from
// configuration.
func NewStepsWithRubric(client llm.Client, rubric Rubric) *Steps {
	return &Steps{client: client, rubric: rubric}
}

func (s *Steps) Kind() string {
	return "webtoon_script"
}

// Write converts story prose into a validated structured script.
func (s *Steps) Write(ctx context.Context, req Request) (*Draft, error) {
	if strings.TrimSpace(req.Story) == "" {
		return nil, fmt.Errorf("script request has no story text")
	}
	style := req.GenreStyle
	if style == "" {
		style = DefaultGenreStyle
	}

	template := prompts.MustGet("script.json", "write-script")
	prompt := prompts.Format(template, map[string]string{
		"Story":      req.Story,
		"GenreStyle": style,
	})

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("script generation failed: %w", err)
	}

	parsed, err := s.parseScript(raw, uuid.New().String())
	if err != nil {
		return nil, err
	}

	return &Draft{Story: req.Story, GenreStyle: style, Script: parsed}, nil
}

// parseScript runs the repair-then-validate path shared by Write and
// Rewrite: decode the raw response, fill repairable gaps, check the result
// against the script schema, and bind it to typed structs.
func (s *Steps) parseScript(raw, scriptID string) (*Script, error) {
	var tree map[string]any
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, &workflow.StepError{
			Cat: workflow.CategoryMalformedStructure,
			Err: fmt.Errorf("script response is not a JSON mapping: %w", err),
		}
	}

	repaired, _, err := repair.Script(tree)
	if err != nil {
		return nil, &workflow.StepError{
			Cat: workflow.CategoryMalformedStructure,
			Err: err,
		}
	}
	if _, exists := repaired["script_id"]; !exists {
		repaired["script_id"] = scriptID
	}

	normalized, err := json.Marshal(repaired)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize repaired script: %w", err)
	}
	if err := schemas.ValidateScript(string(normalized)); err != nil {
		return nil, &workflow.StepError{
			Cat: workflow.CategoryMalformedStructure,
			Err: fmt.Errorf("repaired script failed schema validation: %w", err),
		}
	}

	var parsed Script
	if err := json.Unmarshal(normalized, &parsed); err != nil {
		return nil, fmt.Errorf("failed to bind validated script: %w", err)
	}
	return &parsed, nil
}
