package repair

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode builds the JSON-shaped tree the repair layer operates on.
func decode(t *testing.T, src string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(src), &doc))
	return doc
}

func completeScript(t *testing.T) map[string]any {
	return decode(t, `{
		"characters": [
			{
				"name": "Mina",
				"gender": "female",
				"age": "24",
				"face": "soft features with sharp eyes",
				"hair": "long black hair",
				"body": "slender",
				"outfit": "a grey office suit",
				"mood": "guarded",
				"visual_description": "female, 24 years old, soft features with sharp eyes, long black hair, slender, wearing a grey office suit, guarded demeanor"
			}
		],
		"panels": [
			{
				"panel_number": 1,
				"shot_type": "Wide Shot",
				"active_character_names": ["Mina"],
				"visual_prompt": "Wide Shot of a rain-soaked crosswalk at dusk, Mina frozen mid-step under a shared umbrella, neon reflections, cinematic manhwa style",
				"dialogue": [{"character": "Mina", "text": "You came back.", "order": 1}]
			}
		]
	}`)
}

func TestScriptRepairIdempotent(t *testing.T) {
	doc := completeScript(t)

	repaired, warnings, err := Script(doc)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, doc, repaired)
}

func TestScriptRepairDoesNotMutateInput(t *testing.T) {
	doc := decode(t, `{"characters": [{"name": "Mina"}], "panels": [{}]}`)

	_, _, err := Script(doc)
	require.NoError(t, err)

	// The input still has its gaps; only the returned copy was filled.
	char := doc["characters"].([]any)[0].(map[string]any)
	_, hasGender := char["gender"]
	assert.False(t, hasGender)
}

func TestScriptRepairScenario(t *testing.T) {
	// Panel missing visual_prompt and shot_type; character whose
	// description says "she" but has no gender.
	doc := decode(t, `{
		"characters": [
			{
				"name": "Sora",
				"age": "19",
				"face": "bright eyes, she smiles easily",
				"hair": "short auburn hair",
				"body": "petite",
				"outfit": "a school uniform",
				"mood": "cheerful",
				"visual_description": "petite student with short auburn hair"
			}
		],
		"panels": [
			{"panel_number": 1, "shot_type": "Wide Shot", "active_character_names": [], "visual_prompt": "Wide Shot of a school gate at dawn", "dialogue": null},
			{"panel_number": 2, "shot_type": "Close-Up", "active_character_names": ["Sora"], "visual_prompt": "Close-Up of Sora clutching a letter", "dialogue": null},
			{"panel_number": 3, "active_character_names": ["Sora"], "dialogue": null}
		]
	}`)

	repaired, warnings, err := Script(doc)
	require.NoError(t, err)

	panels := repaired["panels"].([]any)
	panel3 := panels[2].(map[string]any)
	assert.Equal(t, "Medium Shot", panel3["shot_type"])
	assert.Equal(t, "Medium Shot of petite student with short auburn hair (Sora)", panel3["visual_prompt"])

	char := repaired["characters"].([]any)[0].(map[string]any)
	assert.Equal(t, "female", char["gender"])

	require.Len(t, warnings, 2)
	assert.Equal(t, "panels.2.visual_prompt", warnings[0].Path)
	assert.Equal(t, "characters.0.gender", warnings[1].Path)
}

func TestScriptRepairPanelGaps(t *testing.T) {
	tests := []struct {
		name  string
		panel string
		check func(t *testing.T, panel map[string]any)
	}{
		{
			name:  "Missing panel_number assigned from array order",
			panel: `{"shot_type": "Wide Shot", "visual_prompt": "a street", "active_character_names": []}`,
			check: func(t *testing.T, panel map[string]any) {
				assert.Equal(t, float64(1), panel["panel_number"])
			},
		},
		{
			name:  "Non-positive panel_number reassigned",
			panel: `{"panel_number": 0, "shot_type": "Wide Shot", "visual_prompt": "a street", "active_character_names": []}`,
			check: func(t *testing.T, panel map[string]any) {
				assert.Equal(t, float64(1), panel["panel_number"])
			},
		},
		{
			name:  "Missing participant list becomes empty",
			panel: `{"panel_number": 1, "shot_type": "Wide Shot", "visual_prompt": "a street"}`,
			check: func(t *testing.T, panel map[string]any) {
				assert.Equal(t, []any{}, panel["active_character_names"])
			},
		},
		{
			name:  "Empty visual_prompt without participants falls back to shot sentence",
			panel: `{"panel_number": 1, "shot_type": "Close-Up", "visual_prompt": "   ", "active_character_names": []}`,
			check: func(t *testing.T, panel map[string]any) {
				assert.Equal(t, "Close-Up scene", panel["visual_prompt"])
			},
		},
		{
			name:  "Missing dialogue key normalized to null",
			panel: `{"panel_number": 1, "shot_type": "Wide Shot", "visual_prompt": "a street", "active_character_names": []}`,
			check: func(t *testing.T, panel map[string]any) {
				v, exists := panel["dialogue"]
				assert.True(t, exists)
				assert.Nil(t, v)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decode(t, fmt.Sprintf(`{"characters": [], "panels": [%s]}`, tt.panel))
			repaired, _, err := Script(doc)
			require.NoError(t, err)
			tt.check(t, repaired["panels"].([]any)[0].(map[string]any))
		})
	}
}

func TestScriptRepairCharacterCompleteness(t *testing.T) {
	// Every required character field must be present after repair, for any
	// subset of supplied fields.
	required := []string{"name", "gender", "age", "face", "hair", "body", "outfit", "mood", "visual_description"}
	supplied := map[string]string{
		"name":               "Jun",
		"gender":             "male",
		"age":                "30",
		"face":               "angular jaw",
		"hair":               "buzz cut",
		"body":               "broad shoulders",
		"outfit":             "a worn leather jacket",
		"mood":               "brooding",
		"visual_description": "a brooding man in a worn leather jacket",
	}

	// Iterate all subsets of the field set via bitmask.
	for mask := 0; mask < 1<<len(required); mask++ {
		char := map[string]any{}
		for i, field := range required {
			if mask&(1<<i) != 0 {
				char[field] = supplied[field]
			}
		}
		doc := map[string]any{"characters": []any{char}, "panels": []any{}}

		repaired, _, err := Script(doc)
		require.NoError(t, err)

		got := repaired["characters"].([]any)[0].(map[string]any)
		for _, field := range required {
			s, ok := got[field].(string)
			assert.True(t, ok && s != "", "mask %b: field %s missing or empty", mask, field)
		}
		// Generator-supplied values are never overwritten.
		for i, field := range required {
			if mask&(1<<i) != 0 {
				assert.Equal(t, supplied[field], got[field], "mask %b: field %s overwritten", mask, field)
			}
		}
	}
}

func TestScriptRepairPlaceholderCharacter(t *testing.T) {
	doc := decode(t, `{"characters": [{}], "panels": []}`)

	repaired, _, err := Script(doc)
	require.NoError(t, err)

	char := repaired["characters"].([]any)[0].(map[string]any)
	assert.Equal(t, "Unknown Character", char["name"])
	assert.Equal(t, "unknown", char["gender"])
	assert.Equal(t, "adult", char["age"])
	assert.Equal(t, "distinctive features", char["face"])
	assert.Equal(t, "casual attire", char["outfit"])
	assert.NotEmpty(t, char["visual_description"])
}

func TestScriptRepairMissingTopLevelLists(t *testing.T) {
	repaired, warnings, err := Script(map[string]any{})

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []any{}, repaired["characters"])
	assert.Equal(t, []any{}, repaired["panels"])
}

func TestScriptRepairMalformedStructure(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "Characters not a list", doc: `{"characters": "Mina", "panels": []}`},
		{name: "Panels not a list", doc: `{"characters": [], "panels": {"panel_number": 1}}`},
		{name: "Panel entry not a mapping", doc: `{"characters": [], "panels": ["wide shot"]}`},
		{name: "Character entry not a mapping", doc: `{"characters": [42], "panels": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Script(decode(t, tt.doc))
			var malformed *MalformedStructureError
			require.Error(t, err)
			assert.True(t, errors.As(err, &malformed))
		})
	}
}

func TestInferGender(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    string
	}{
		{name: "Female marker she", description: "she has sharp eyes", expected: "female"},
		{name: "Female marker woman", description: "a tall WOMAN in her thirties", expected: "female"},
		{name: "Male marker he", description: "he carries himself stiffly", expected: "male"},
		{name: "Male marker man", description: "a weathered man", expected: "male"},
		{name: "Female checked before male", description: "she looks like he did once", expected: "female"},
		{name: "Marker inside word does not match", description: "a shed near the shoreline", expected: "unknown"},
		{name: "No marker", description: "tall, quiet, always reading", expected: "unknown"},
		{name: "Empty description", description: "", expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferGender(tt.description))
		})
	}
}
