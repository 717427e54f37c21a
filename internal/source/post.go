// Package source supplies the seed content the story pipeline consumes. A
// Provider abstracts where posts come from (Reddit API proxy, fixture
// files, request bodies); the pipeline only needs title and body text.
package source

import "context"

// Post is the seed content for a story run. Body may be empty; title-only
// posts are valid input.
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Provider fetches a post by id.
type Provider interface {
	GetPost(ctx context.Context, id string) (*Post, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, id string) (*Post, error)

func (f ProviderFunc) GetPost(ctx context.Context, id string) (*Post, error) {
	return f(ctx, id)
}
