package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/daniel/webtoon-agent/internal/workflow"
)

// Rubric holds the thresholds for the deterministic script evaluation.
// Programmatic checks are faster and more reproducible than an LLM judge
// for structural criteria.
type Rubric struct {
	MinScenes        int
	MaxScenes        int
	DialogueCoverage float64
	MinPromptLength  int
}

func DefaultRubric() Rubric {
	return Rubric{
		MinScenes:        8,
		MaxScenes:        12,
		DialogueCoverage: 0.6,
		MinPromptLength:  150,
	}
}

// Evaluate scores a script against the rubric. Weights: scene count 30%,
// dialogue coverage 25%, visual prompt completeness 20%, character
// consistency 15%, shot variety 10%.
func (s *Steps) Evaluate(_ context.Context, draft *Draft) (*workflow.Evaluation, error) {
	if draft == nil || draft.Script == nil {
		return nil, fmt.Errorf("no script to evaluate")
	}

	r := s.rubric
	sc := draft.Script
	numPanels := len(sc.Panels)
	var feedbackParts []string

	// Scene count.
	var sceneScore float64
	switch {
	case numPanels < r.MinScenes:
		if r.MinScenes > 0 {
			sceneScore = float64(numPanels) / float64(r.MinScenes) * 10
		}
		feedbackParts = append(feedbackParts, fmt.Sprintf(
			"ADD %d MORE SCENES. Current: %d, Required: %d-%d. Add development and resolution scenes.",
			r.MinScenes-numPanels, numPanels, r.MinScenes, r.MaxScenes))
	case numPanels > r.MaxScenes:
		sceneScore = 10 - float64(numPanels-r.MaxScenes)*2
		if sceneScore < 0 {
			sceneScore = 0
		}
		feedbackParts = append(feedbackParts, fmt.Sprintf(
			"REDUCE scenes to %d. Combine similar beats.", r.MaxScenes))
	default:
		sceneScore = 10
	}

	// Dialogue coverage.
	withDialogue := 0
	var silent []int
	for _, p := range sc.Panels {
		if len(p.Dialogue) > 0 {
			withDialogue++
		} else {
			silent = append(silent, p.PanelNumber)
		}
	}
	var dialogueRatio float64
	if numPanels > 0 {
		dialogueRatio = float64(withDialogue) / float64(numPanels)
	}
	var dialogueScore float64
	if dialogueRatio < r.DialogueCoverage {
		if r.DialogueCoverage > 0 {
			dialogueScore = dialogueRatio / r.DialogueCoverage * 10
		}
		feedbackParts = append(feedbackParts, fmt.Sprintf(
			"ADD DIALOGUE to panels: %v. Every scene should have character interaction.",
			head(silent, 5)))
	} else {
		dialogueScore = 10
	}

	// Visual prompt completeness.
	var short []int
	for _, p := range sc.Panels {
		if len(p.VisualPrompt) < r.MinPromptLength {
			short = append(short, p.PanelNumber)
		}
	}
	promptScore := 10.0
	if len(short) > 0 {
		if numPanels > 0 {
			promptScore = float64(numPanels-len(short)) / float64(numPanels) * 10
		} else {
			promptScore = 0
		}
		feedbackParts = append(feedbackParts, fmt.Sprintf(
			"EXPAND visual_prompt for panels %v. Each prompt should cover shot type, composition, environment details, character placement, lighting, atmosphere, style.",
			head(short, 3)))
	}

	// Character consistency.
	defined := make(map[string]bool, len(sc.Characters))
	for _, c := range sc.Characters {
		defined[c.Name] = true
	}
	unknownSet := make(map[string]bool)
	var unknown []string
	for _, p := range sc.Panels {
		for _, name := range p.ActiveCharacterNames {
			if !defined[name] && !unknownSet[name] {
				unknownSet[name] = true
				unknown = append(unknown, name)
			}
		}
	}
	consistencyScore := 10.0
	if len(unknown) > 0 {
		consistencyScore = 10 - float64(len(unknown))*2
		if consistencyScore < 0 {
			consistencyScore = 0
		}
		feedbackParts = append(feedbackParts, fmt.Sprintf(
			"ADD character definitions for: %v. Or use existing character names consistently.", unknown))
	}

	// Shot variety (stands in for act structure once the panel count is
	// healthy).
	var structureScore float64
	if numPanels >= r.MinScenes {
		shots := make(map[string]bool)
		for _, p := range sc.Panels {
			if p.ShotType != "" {
				shots[p.ShotType] = true
			}
		}
		if len(shots) < 3 {
			structureScore = 5
			feedbackParts = append(feedbackParts,
				"ADD SHOT VARIETY: Mix Wide Shots, Medium Shots, Close-Ups, and Extreme Close-Ups throughout the story.")
		} else {
			structureScore = 10
		}
	} else if r.MinScenes > 0 {
		structureScore = float64(numPanels) / float64(r.MinScenes) * 10
	}

	final := sceneScore*0.30 + dialogueScore*0.25 + promptScore*0.20 + consistencyScore*0.15 + structureScore*0.10

	feedback := "Script meets all quality criteria."
	if len(feedbackParts) > 0 {
		feedback = "ISSUES TO FIX:\n- " + strings.Join(feedbackParts, "\n- ")
	}

	return &workflow.Evaluation{
		Score:    final,
		Feedback: feedback,
		Subscores: map[string]float64{
			"scene_count":           sceneScore,
			"dialogue_coverage":     dialogueScore,
			"visual_prompt":         promptScore,
			"character_consistency": consistencyScore,
			"story_structure":       structureScore,
		},
	}, nil
}

func head(nums []int, n int) []int {
	if len(nums) > n {
		return nums[:n]
	}
	return nums
}
