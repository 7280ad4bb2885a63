package entrymeta

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/eringen/entrymeta/templatetags"
)

func TestPostCacheServesUntilInvalidated(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, PostInput{Slug: "first", Title: "First", PublishedAt: testDate})
	c := NewPostCache(s, time.Hour)

	posts, err := c.ListPosts(ListFilter{})
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}

	savePost(t, s, PostInput{Slug: "second", Title: "Second", PublishedAt: testDate.Add(time.Hour)})
	if _, err := c.GetPost("second"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale cache GetPost error = %v, want ErrNotFound", err)
	}

	c.Invalidate()
	p, err := c.GetPost("second")
	if err != nil {
		t.Fatalf("GetPost after invalidate failed: %v", err)
	}
	if p.Title != "Second" {
		t.Errorf("Title = %q, want Second", p.Title)
	}
}

func TestPostCacheExpires(t *testing.T) {
	s := setupTestStore(t)
	c := NewPostCache(s, time.Nanosecond)
	if _, err := c.ListPosts(ListFilter{}); err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	savePost(t, s, PostInput{Slug: "late", Title: "Late", PublishedAt: testDate})
	time.Sleep(time.Millisecond)
	if _, err := c.GetPost("late"); err != nil {
		t.Fatalf("expired cache should reload: %v", err)
	}
}

func TestPostCacheFiltersMatchStore(t *testing.T) {
	s := setupTestStore(t)
	seedFilterPosts(t, s)
	c := NewPostCache(s, time.Hour)

	for _, f := range []ListFilter{
		{},
		{Type: templatetags.TypePage},
		{Taxonomy: templatetags.TaxonomyCategory, TermSlug: "news"},
		{Taxonomy: templatetags.TaxonomyLocationTypes},
		{AuthorSlug: "ann"},
		{Taxonomy: templatetags.TaxonomyLocationTypes, TermSlug: "park", AuthorSlug: "ann"},
	} {
		fromStore, err := s.ListPosts(f)
		if err != nil {
			t.Fatalf("store ListPosts(%+v) failed: %v", f, err)
		}
		fromCache, err := c.ListPosts(f)
		if err != nil {
			t.Fatalf("cache ListPosts(%+v) failed: %v", f, err)
		}
		if diff := cmp.Diff(slugs(fromStore), slugs(fromCache)); diff != "" {
			t.Errorf("filter %+v: cache differs from store (-store +cache):\n%s", f, diff)
		}
	}
}
