package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get("story.json", "write-story")

	require.NoError(t, err)
	assert.Contains(t, prompt, "Web Novel Author")
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("nonexistent.json", "write-story")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no prompt file")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("story.json", "nonexistent-key")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("story.json", "nonexistent-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	assert.NotPanics(t, func() {
		prompt := MustGet("script.json", "write-script")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	result := Format("Hello {{.Name}}, welcome to {{.Place}}!", map[string]string{
		"Name":  "Alice",
		"Place": "Wonderland",
	})

	assert.Equal(t, "Hello Alice, welcome to Wonderland!", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	result := Format("No placeholders here", map[string]string{"Name": "Alice"})

	assert.Equal(t, "No placeholders here", result)
}

func TestFormat_UnmatchedPlaceholderSurvives(t *testing.T) {
	result := Format("Hello {{.Name}} from {{.Place}}", map[string]string{"Name": "Alice"})

	assert.Equal(t, "Hello Alice from {{.Place}}", result)
}

func TestMoodModifiersPresent(t *testing.T) {
	moods := []string{
		"mood-rofan",
		"mood-modern-romance",
		"mood-slice-of-life",
		"mood-revenge",
		"mood-high-teen",
	}

	for _, key := range moods {
		prompt, err := Get("story.json", key)
		require.NoError(t, err, "mood %s", key)
		assert.Contains(t, prompt, "NARRATIVE MODIFIER", "mood %s", key)
	}
}
