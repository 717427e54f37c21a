package source

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCacheTTL bounds how long a fetched post is reused before the
// provider is asked again.
const DefaultCacheTTL = 5 * time.Minute

// CachedProvider wraps a Provider with an in-memory TTL cache so repeated
// runs against the same post do not refetch it.
type CachedProvider struct {
	inner Provider
	cache *gocache.Cache
}

// NewCachedProvider wraps inner with a TTL cache. A non-positive ttl uses
// DefaultCacheTTL.
func NewCachedProvider(inner Provider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedProvider{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (p *CachedProvider) GetPost(ctx context.Context, id string) (*Post, error) {
	if cached, found := p.cache.Get(id); found {
		return cached.(*Post), nil
	}

	post, err := p.inner.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	p.cache.Set(id, post, gocache.DefaultExpiration)
	return post, nil
}

// Flush drops every cached post.
func (p *CachedProvider) Flush() {
	p.cache.Flush()
}
