package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain JSON untouched",
			input:    `{"score": 7.5, "feedback": "tighten the ending"}`,
			expected: `{"score": 7.5, "feedback": "tighten the ending"}`,
		},
		{
			name:     "json fence stripped",
			input:    "```json\n{\"panels\": []}\n```",
			expected: `{"panels": []}`,
		},
		{
			name:     "Generic fence stripped",
			input:    "```\n{\"characters\": []}\n```",
			expected: `{"characters": []}`,
		},
		{
			name:     "Language identifier line skipped",
			input:    "```javascript\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "Fence with JSON on first line kept",
			input:    "```{\"a\": 1}```",
			expected: `{"a": 1}`,
		},
		{
			name:     "Surrounding whitespace trimmed",
			input:    "  \n{\"a\": 1}\n  ",
			expected: `{"a": 1}`,
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
