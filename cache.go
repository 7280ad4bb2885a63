package entrymeta

import (
	"sync"
	"time"

	"github.com/eringen/entrymeta/templatetags"
)

// PostCache is an in-memory cache of published posts with TTL. Filtering is
// done on the cached slice so archives do not hit the database.
type PostCache struct {
	mu      sync.RWMutex
	posts   []templatetags.Post
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// ensureLoaded returns cached posts after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() ([]templatetags.Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	posts, err := c.store.ListPosts(ListFilter{})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []templatetags.Post{}
	}
	c.posts = posts
	c.fetched = time.Now()
	return c.posts, nil
}

// ListPosts returns published posts matching f, newest first.
func (c *PostCache) ListPosts(f ListFilter) ([]templatetags.Post, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var filtered []templatetags.Post
	for _, p := range posts {
		if f.matches(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(slug string) (templatetags.Post, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return templatetags.Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return templatetags.Post{}, ErrNotFound
}

func (f ListFilter) matches(p templatetags.Post) bool {
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.AuthorSlug != "" && p.Author.Slug != f.AuthorSlug {
		return false
	}
	if f.Taxonomy == "" {
		return true
	}
	for _, t := range p.TermsOf(f.Taxonomy) {
		if f.TermSlug == "" || t.Slug == f.TermSlug {
			return true
		}
	}
	return false
}
