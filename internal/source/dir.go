package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirProvider serves posts from JSON files in a local directory, one file
// per post named <id>.json. It stands in for a live post source during
// development and testing.
type DirProvider struct {
	dir string
}

// NewDirProvider creates a provider over the given directory.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{dir: dir}
}

// GetPost reads <dir>/<id>.json. Path separators in ids are rejected so an
// id cannot escape the directory.
func (p *DirProvider) GetPost(_ context.Context, id string) (*Post, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("invalid post id %q", id)
	}

	data, err := os.ReadFile(filepath.Join(p.dir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read post %s: %w", id, err)
	}

	var post Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("failed to parse post %s: %w", id, err)
	}
	if post.ID == "" {
		post.ID = id
	}
	return &post, nil
}
