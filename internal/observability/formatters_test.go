package observability

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/daniel/webtoon-agent/internal/script"
	"github.com/daniel/webtoon-agent/internal/source"
	"github.com/daniel/webtoon-agent/internal/story"
	"github.com/daniel/webtoon-agent/internal/workflow"
)

func TestPrintRunSummary_Completed(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	score := 8.25
	p.PrintRunSummary(workflow.Snapshot{
		RunID:    uuid.New(),
		Kind:     "story",
		Phase:    workflow.PhaseDone,
		Attempts: 1,
		Score:    &score,
		Feedback: "Script meets all quality criteria.",
	})

	out := buf.String()
	assert.Contains(t, out, "WORKFLOW RUN")
	assert.Contains(t, out, "Kind:     story")
	assert.Contains(t, out, "Phase:    done")
	assert.Contains(t, out, "Score:    8.25")
	assert.Contains(t, out, "Script meets all quality criteria.")
}

func TestPrintRunSummary_Failed(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.PrintRunSummary(workflow.Snapshot{
		RunID: uuid.New(),
		Kind:  "webtoon_script",
		Phase: workflow.PhaseFailed,
		Error: &workflow.RunError{
			Category: workflow.CategoryGeneration,
			Message:  "provider timeout",
		},
	})

	out := buf.String()
	assert.Contains(t, out, "generation_error")
	assert.Contains(t, out, "provider timeout")
}

func TestPrintStory(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.PrintStory(&story.Draft{
		Post:  &source.Post{ID: "abc", Title: "My cat opens doors"},
		Mood:  "slice_of_life",
		Story: "Line one.\nLine two.\nLine three.\nLine four.\nLine five.",
	})

	out := buf.String()
	assert.Contains(t, out, "GENERATED STORY")
	assert.Contains(t, out, "My cat opens doors")
	assert.Contains(t, out, "Mood:     slice_of_life")
	assert.Contains(t, out, "Line one.")
	assert.Contains(t, out, "... and 2 more lines")
}

func TestPrintStory_Nil(t *testing.T) {
	var buf strings.Builder
	NewPrinter(&buf).PrintStory(nil)
	assert.Empty(t, buf.String())
}

func TestPrintScript(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.PrintScript(&script.Script{
		ScriptID: "s1",
		Characters: []script.Character{
			{Name: "Mina", Gender: "female"},
			{Name: "Joon", Gender: "male"},
		},
		Panels: []script.Panel{
			{PanelNumber: 1, ShotType: "Wide Shot", Dialogue: []script.Dialogue{{Character: "Mina", Text: "hi", Order: 1}}},
			{PanelNumber: 2, ShotType: "Close-Up"},
			{PanelNumber: 3, ShotType: "Wide Shot"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "WEBTOON SCRIPT")
	assert.Contains(t, out, "Mina (female)")
	assert.Contains(t, out, "Panels:   3 (1 with dialogue)")
	assert.Contains(t, out, "2x Wide Shot")
	assert.Contains(t, out, "1x Close-Up")
}
