// Package story implements the story generation pipeline: a seed post is
// expanded into web novel prose in a selected mood, judged by an LLM
// evaluator, and revised against the evaluator's feedback.
package story

import (
	"strings"

	"github.com/daniel/webtoon-agent/internal/source"
)

// DefaultMood is used when a request carries no or an unknown mood.
const DefaultMood = "modern_romance"

// Moods lists the supported story moods in presentation order.
func Moods() []string {
	return []string{"rofan", "modern_romance", "slice_of_life", "revenge", "high_teen"}
}

// ValidMood reports whether mood names a supported narrative modifier.
func ValidMood(mood string) bool {
	for _, m := range Moods() {
		if m == mood {
			return true
		}
	}
	return false
}

// moodPromptKey maps a mood id to its prompt key in story.json. Unknown
// moods fall back to the default mood's modifier.
func moodPromptKey(mood string) string {
	if !ValidMood(mood) {
		mood = DefaultMood
	}
	return "mood-" + strings.ReplaceAll(mood, "_", "-")
}

// Request is the input to a story run.
type Request struct {
	Post *source.Post
	Mood string
}

// Draft is the artifact a story run produces and revises. It carries the
// seed alongside the generated text so evaluation can judge fidelity
// without reaching back to the provider.
type Draft struct {
	Post  *source.Post `json:"post"`
	Mood  string       `json:"mood"`
	Story string       `json:"story"`
}
