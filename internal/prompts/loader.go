// Package prompts serves the LLM prompt templates embedded with the binary.
// Each workflow ships one JSON file (story.json, script.json) mapping prompt
// keys to template text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// all parses every embedded prompt file exactly once. The files are compiled
// into the binary, so a parse failure is a build defect and panics.
var all = sync.OnceValue(func() map[string]map[string]string {
	entries, err := promptFiles.ReadDir(".")
	if err != nil {
		panic(fmt.Sprintf("prompts: read embedded dir: %v", err))
	}
	parsed := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		data, err := promptFiles.ReadFile(entry.Name())
		if err != nil {
			panic(fmt.Sprintf("prompts: read %s: %v", entry.Name(), err))
		}
		var templates map[string]string
		if err := json.Unmarshal(data, &templates); err != nil {
			panic(fmt.Sprintf("prompts: parse %s: %v", entry.Name(), err))
		}
		parsed[entry.Name()] = templates
	}
	return parsed
})

// Get returns the template stored under key in the named prompt file
// (e.g. "story.json").
func Get(filename, key string) (string, error) {
	templates, ok := all()[filename]
	if !ok {
		return "", fmt.Errorf("no prompt file %q embedded", filename)
	}
	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// MustGet is Get for prompts the workflows cannot run without.
func MustGet(filename, key string) string {
	template, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Format substitutes {{.Key}} placeholders in a template with values from
// data. Unmatched placeholders are left in place.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{.%s}}", key), value)
	}
	return result
}
