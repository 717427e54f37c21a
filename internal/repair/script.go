package repair

import (
	"fmt"
	"log"
	"strings"
)

// Warning records one significant repair: a synthesized visual prompt or an
// inferred classification. Routine structural fills (positions, empty
// lists, placeholder attribute slots) are logged but not reported, so the
// warning stream tracks generator output quality rather than noise.
type Warning struct {
	Path    string
	Message string
}

// Character attribute slots and their placeholder phrases. Each slot gets a
// distinct phrase so repaired output stays human-scannable.
var characterPlaceholders = []struct {
	key         string
	placeholder string
}{
	{"age", "adult"},
	{"face", "distinctive features"},
	{"hair", "styled hair"},
	{"body", "average build"},
	{"outfit", "casual attire"},
	{"mood", "neutral demeanor"},
}

const (
	defaultShotType = "Medium Shot"
	placeholderName = "Unknown Character"
)

// Script fills missing or empty required fields in a raw script mapping
// before schema validation. The input is not mutated; the returned mapping
// satisfies every required field of the script schema by construction.
//
// Script never fails for missing-field cases. It returns a
// MalformedStructureError only when the tree itself is malformed (a
// non-list characters value, a non-mapping panel), which is an upstream
// logic error rather than generator flakiness.
func Script(raw map[string]any) (map[string]any, []Warning, error) {
	if raw == nil {
		return nil, nil, &MalformedStructureError{Path: "(root)", Expected: "mapping"}
	}

	doc := deepCopy(raw).(map[string]any)
	var warnings []Warning

	characters, err := objectList(doc, "characters")
	if err != nil {
		return nil, nil, err
	}
	panels, err := objectList(doc, "panels")
	if err != nil {
		return nil, nil, err
	}

	// Visual prompts are synthesized from generator-supplied character
	// descriptions, looked up before the characters themselves are
	// repaired.
	descriptions := make(map[string]string)
	for _, char := range characters {
		name := stringField(char, "name")
		desc := stringField(char, "visual_description")
		if name != "" && desc != "" {
			descriptions[name] = desc
		}
	}

	for i, panel := range panels {
		repairPanel(panel, i, descriptions, &warnings)
	}
	for i, char := range characters {
		repairCharacter(char, i, &warnings)
	}

	for _, w := range warnings {
		log.Printf("repair: %s: %s", w.Path, w.Message)
	}

	return doc, warnings, nil
}

func repairPanel(panel map[string]any, index int, descriptions map[string]string, warnings *[]Warning) {
	path := fmt.Sprintf("panels.%d", index)

	number, ok := panel["panel_number"].(float64)
	if !ok || number < 1 {
		panel["panel_number"] = float64(index + 1)
		log.Printf("repair: %s.panel_number assigned %d from array order", path, index+1)
	}

	if stringField(panel, "shot_type") == "" {
		panel["shot_type"] = defaultShotType
		log.Printf("repair: %s.shot_type defaulted to %q", path, defaultShotType)
	}

	names, ok := panel["active_character_names"].([]any)
	if !ok {
		names = []any{}
		panel["active_character_names"] = names
	}

	if stringField(panel, "visual_prompt") == "" {
		shot := stringField(panel, "shot_type")
		var parts []string
		for _, n := range names {
			name, _ := n.(string)
			if desc, found := descriptions[name]; found {
				parts = append(parts, fmt.Sprintf("%s (%s)", desc, name))
			}
		}
		var prompt string
		if len(parts) > 0 {
			prompt = fmt.Sprintf("%s of %s", shot, strings.Join(parts, ", "))
		} else {
			prompt = fmt.Sprintf("%s scene", shot)
		}
		panel["visual_prompt"] = prompt
		*warnings = append(*warnings, Warning{
			Path:    path + ".visual_prompt",
			Message: "missing visual_prompt, generated default",
		})
	}

	if _, exists := panel["dialogue"]; !exists {
		panel["dialogue"] = nil
	}
}

func repairCharacter(char map[string]any, index int, warnings *[]Warning) {
	path := fmt.Sprintf("characters.%d", index)

	if stringField(char, "name") == "" {
		char["name"] = placeholderName
		log.Printf("repair: %s.name defaulted to %q", path, placeholderName)
	}
	name := stringField(char, "name")

	if stringField(char, "gender") == "" {
		freeText := strings.Join([]string{
			stringField(char, "face"),
			stringField(char, "body"),
			stringField(char, "mood"),
		}, " ")
		gender := InferGender(freeText)
		char["gender"] = gender
		*warnings = append(*warnings, Warning{
			Path:    path + ".gender",
			Message: fmt.Sprintf("missing gender for %s, inferred: %s", name, gender),
		})
	}

	for _, slot := range characterPlaceholders {
		if stringField(char, slot.key) == "" {
			char[slot.key] = slot.placeholder
			log.Printf("repair: %s.%s defaulted to %q", path, slot.key, slot.placeholder)
		}
	}

	if stringField(char, "visual_description") == "" {
		char["visual_description"] = buildVisualDescription(char)
		log.Printf("repair: %s.visual_description built from attribute slots", path)
	}
}

// buildVisualDescription assembles a description sentence from the
// character's attribute slots in natural reading order.
func buildVisualDescription(char map[string]any) string {
	var parts []string
	if v := stringField(char, "gender"); v != "" {
		parts = append(parts, v)
	}
	if v := stringField(char, "age"); v != "" {
		parts = append(parts, v+" years old")
	}
	for _, key := range []string{"face", "hair", "body"} {
		if v := stringField(char, key); v != "" {
			parts = append(parts, v)
		}
	}
	if v := stringField(char, "outfit"); v != "" {
		parts = append(parts, "wearing "+v)
	}
	if v := stringField(char, "mood"); v != "" {
		parts = append(parts, v+" demeanor")
	}
	if len(parts) == 0 {
		return "A character in the story"
	}
	return strings.Join(parts, ", ")
}

// objectList resolves doc[key] as a list of mappings, installing an empty
// list when the key is absent. A present value of the wrong shape is a
// malformed tree, not a repairable gap.
func objectList(doc map[string]any, key string) ([]map[string]any, error) {
	v, exists := doc[key]
	if !exists || v == nil {
		doc[key] = []any{}
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &MalformedStructureError{Path: key, Expected: "list"}
	}
	out := make([]map[string]any, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &MalformedStructureError{
				Path:     fmt.Sprintf("%s.%d", key, i),
				Expected: "mapping",
			}
		}
		out[i] = obj
	}
	return out, nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// deepCopy clones a JSON-shaped value so repair never mutates its input.
func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
