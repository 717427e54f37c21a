package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePostFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPostFile(t *testing.T) {
	path := writePostFile(t, "cat.json",
		`{"id": "abc123", "title": "My cat opens doors", "content": "Every night..."}`)

	post, err := loadPostFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", post.ID)
	assert.Equal(t, "My cat opens doors", post.Title)
	assert.Equal(t, "Every night...", post.Content)
}

func TestLoadPostFile_DefaultsIDFromFilename(t *testing.T) {
	path := writePostFile(t, "parking-war.json", `{"title": "Parking war"}`)

	post, err := loadPostFile(path)
	require.NoError(t, err)
	assert.Equal(t, "parking-war", post.ID)
}

func TestLoadPostFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "Missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") },
			wantErr: "failed to read post file",
		},
		{
			name:    "Invalid JSON",
			path:    func(t *testing.T) string { return writePostFile(t, "bad.json", `{"title": `) },
			wantErr: "failed to parse post file",
		},
		{
			name:    "Missing title",
			path:    func(t *testing.T) string { return writePostFile(t, "no-title.json", `{"content": "body"}`) },
			wantErr: "has no title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadPostFile(tt.path(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoryOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		outDir   string
		expected string
	}{
		{
			name:     "Next to input",
			input:    "posts/cat.json",
			outDir:   "",
			expected: "posts/cat.story.txt",
		},
		{
			name:     "Explicit output directory",
			input:    "posts/cat.json",
			outDir:   "out",
			expected: "out/cat.story.txt",
		},
		{
			name:     "No extension",
			input:    "cat",
			outDir:   "",
			expected: "cat.story.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, storyOutputPath(tt.input, tt.outDir))
		})
	}
}
