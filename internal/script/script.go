// Package script implements the webtoon script pipeline: generated story
// prose is converted into a structured panel-by-panel script, repaired,
// schema-validated, scored against a deterministic rubric, and revised
// when the rubric finds gaps.
package script

// Dialogue is one speech bubble within a panel. Order sequences bubbles
// over a single image.
type Dialogue struct {
	Character string `json:"character"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
}

// Panel is a single webtoon panel with its image generation prompt.
type Panel struct {
	PanelNumber          int        `json:"panel_number"`
	ShotType             string     `json:"shot_type"`
	ActiveCharacterNames []string   `json:"active_character_names"`
	VisualPrompt         string     `json:"visual_prompt"`
	Dialogue             []Dialogue `json:"dialogue"`
}

// Character is one entry in the script's reference sheet. Attribute slots
// feed character image generation; VisualDescription is the combined
// prompt fragment.
type Character struct {
	Name              string `json:"name"`
	ReferenceTag      string `json:"reference_tag,omitempty"`
	Gender            string `json:"gender"`
	Age               string `json:"age"`
	Face              string `json:"face"`
	Hair              string `json:"hair"`
	Body              string `json:"body"`
	Outfit            string `json:"outfit"`
	Mood              string `json:"mood"`
	VisualDescription string `json:"visual_description"`
}

// Script is the structured artifact a script run produces. Once repaired
// and validated it is treated as immutable; a revision produces a new
// Script value.
type Script struct {
	ScriptID   string      `json:"script_id"`
	Characters []Character `json:"characters"`
	Panels     []Panel     `json:"panels"`
}

// Request is the input to a script run.
type Request struct {
	Story      string
	GenreStyle string
}

// Draft pairs the validated script with the story it was adapted from, so
// revision prompts can reference the source without refetching it.
type Draft struct {
	Story      string  `json:"story"`
	GenreStyle string  `json:"genre_style"`
	Script     *Script `json:"script"`
}
