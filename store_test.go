package entrymeta

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/eringen/entrymeta/templatetags"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testDate = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func savePost(t *testing.T, s *Store, in PostInput) int64 {
	t.Helper()
	in.Published = true
	id, err := s.SavePost(in)
	if err != nil {
		t.Fatalf("SavePost(%q) failed: %v", in.Slug, err)
	}
	return id
}

func slugs(posts []templatetags.Post) []string {
	out := []string{}
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.SaveAuthor("ann", "Ann Smith"); err != nil {
		t.Fatalf("SaveAuthor failed: %v", err)
	}
	savePost(t, s, PostInput{
		Slug:         "city-library",
		Title:        "City Library",
		Content:      "<p>Open daily.</p>",
		AuthorSlug:   "ann",
		PublishedAt:  testDate,
		ModifiedAt:   testDate.Add(48 * time.Hour),
		CommentsOpen: true,
		CommentCount: 3,
		Terms: map[string][]string{
			templatetags.TaxonomyCategory:      {"Reading", "Community"},
			templatetags.TaxonomyLocationTypes: {"Library"},
		},
		Meta: map[string][]string{templatetags.MetaMultipleAuthors: {"Ann Smith", "Bo Lee"}},
	})

	got, err := s.GetPost("city-library")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Type != templatetags.TypePost {
		t.Errorf("Type = %q, want %q", got.Type, templatetags.TypePost)
	}
	if got.Permalink != "/blog/city-library/" {
		t.Errorf("Permalink = %q", got.Permalink)
	}
	if !got.PublishedAt.Equal(testDate) {
		t.Errorf("PublishedAt = %v, want %v", got.PublishedAt, testDate)
	}
	if !got.ModifiedAt.Equal(testDate.Add(48 * time.Hour)) {
		t.Errorf("ModifiedAt = %v", got.ModifiedAt)
	}
	want := templatetags.Author{ID: got.Author.ID, Slug: "ann", DisplayName: "Ann Smith", PostsURL: "/author/ann/"}
	if diff := cmp.Diff(want, got.Author); diff != "" {
		t.Errorf("Author mismatch (-want +got):\n%s", diff)
	}
	wantCats := []templatetags.Term{
		{Taxonomy: templatetags.TaxonomyCategory, Name: "Reading", Slug: "reading", URL: "/category/reading/"},
		{Taxonomy: templatetags.TaxonomyCategory, Name: "Community", Slug: "community", URL: "/category/community/"},
	}
	if diff := cmp.Diff(wantCats, got.TermsOf(templatetags.TaxonomyCategory)); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Ann Smith", "Bo Lee"}, got.MetaValues(templatetags.MetaMultipleAuthors)); diff != "" {
		t.Errorf("multiple_authors mismatch (-want +got):\n%s", diff)
	}
	if got.Comments != (templatetags.CommentState{Open: true, Count: 3}) {
		t.Errorf("Comments = %+v", got.Comments)
	}
	if got.PasswordProtected || got.Thumbnail != nil || got.Attachment {
		t.Errorf("unexpected flags: protected=%v thumbnail=%v attachment=%v", got.PasswordProtected, got.Thumbnail, got.Attachment)
	}
}

func TestSavePostUpsertReplacesTerms(t *testing.T) {
	s := setupTestStore(t)
	in := PostInput{Slug: "x", Title: "X", PublishedAt: testDate, Terms: map[string][]string{
		templatetags.TaxonomyTag: {"one", "two"},
	}}
	id := savePost(t, s, in)
	in.Title = "X2"
	in.Terms = map[string][]string{templatetags.TaxonomyTag: {"three"}}
	if id2 := savePost(t, s, in); id2 != id {
		t.Fatalf("upsert changed id: %d -> %d", id, id2)
	}
	got, err := s.GetPost("x")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "X2" {
		t.Errorf("Title = %q, want X2", got.Title)
	}
	tags := got.TermsOf(templatetags.TaxonomyTag)
	if len(tags) != 1 || tags[0].Slug != "three" {
		t.Errorf("tags = %+v, want only three", tags)
	}
}

func TestSavePostRequiresSlug(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.SavePost(PostInput{Title: "No slug"}); err == nil {
		t.Fatal("expected error for empty slug")
	}
}

func TestSavePostUnknownAuthor(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.SavePost(PostInput{Slug: "a", AuthorSlug: "ghost"}); err == nil {
		t.Fatal("expected error for unknown author")
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetPost("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetPost error = %v, want ErrNotFound", err)
	}
}

func TestDraftsHiddenFromPublicQueries(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, PostInput{Slug: "live", Title: "Live", PublishedAt: testDate})
	if _, err := s.SavePost(PostInput{Slug: "draft-one", Title: "Draft", PublishedAt: testDate}); err != nil {
		t.Fatalf("SavePost(draft) failed: %v", err)
	}

	if _, err := s.GetPost("draft-one"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost(draft) error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetPostAny("draft-one"); err != nil {
		t.Errorf("GetPostAny(draft) failed: %v", err)
	}
	posts, err := s.ListPosts(ListFilter{})
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if diff := cmp.Diff([]string{"live"}, slugs(posts)); diff != "" {
		t.Errorf("ListPosts mismatch (-want +got):\n%s", diff)
	}
	all, err := s.ListAllPosts()
	if err != nil {
		t.Fatalf("ListAllPosts failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAllPosts returned %d posts, want 2", len(all))
	}
}

func seedFilterPosts(t *testing.T, s *Store) {
	t.Helper()
	if _, err := s.SaveAuthor("ann", "Ann"); err != nil {
		t.Fatal(err)
	}
	savePost(t, s, PostInput{Slug: "old", Title: "Old", PublishedAt: testDate, AuthorSlug: "ann",
		Terms: map[string][]string{templatetags.TaxonomyCategory: {"News"}}})
	savePost(t, s, PostInput{Slug: "park", Title: "Park", PublishedAt: testDate.Add(time.Hour),
		Terms: map[string][]string{templatetags.TaxonomyLocationTypes: {"Park"}}})
	savePost(t, s, PostInput{Slug: "museum", Title: "Museum", PublishedAt: testDate.Add(2 * time.Hour), AuthorSlug: "ann",
		Terms: map[string][]string{templatetags.TaxonomyLocationTypes: {"Museum"}, templatetags.TaxonomyCategory: {"News"}}})
	savePost(t, s, PostInput{Slug: "about", Title: "About", Type: templatetags.TypePage, PublishedAt: testDate})
}

func TestListPostsFilters(t *testing.T) {
	s := setupTestStore(t)
	seedFilterPosts(t, s)

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all newest first", ListFilter{}, []string{"museum", "park", "about", "old"}},
		{"type", ListFilter{Type: templatetags.TypePage}, []string{"about"}},
		{"term", ListFilter{Taxonomy: templatetags.TaxonomyCategory, TermSlug: "news"}, []string{"museum", "old"}},
		{"any term in taxonomy", ListFilter{Taxonomy: templatetags.TaxonomyLocationTypes}, []string{"museum", "park"}},
		{"author", ListFilter{AuthorSlug: "ann"}, []string{"museum", "old"}},
		{"no match", ListFilter{Taxonomy: templatetags.TaxonomyTag, TermSlug: "nope"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := s.ListPosts(tt.filter)
			if err != nil {
				t.Fatalf("ListPosts failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, slugs(posts)); diff != "" {
				t.Errorf("ListPosts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetTermAndAuthor(t *testing.T) {
	s := setupTestStore(t)
	seedFilterPosts(t, s)

	term, err := s.GetTerm(templatetags.TaxonomyLocationTypes, "museum")
	if err != nil {
		t.Fatalf("GetTerm failed: %v", err)
	}
	if term.Name != "Museum" || term.URL != "/location-types/museum/" {
		t.Errorf("term = %+v", term)
	}
	if _, err := s.GetTerm(templatetags.TaxonomyTag, "museum"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTerm wrong taxonomy error = %v, want ErrNotFound", err)
	}
	a, err := s.GetAuthor("ann")
	if err != nil {
		t.Fatalf("GetAuthor failed: %v", err)
	}
	if a.DisplayName != "Ann" || a.PostsURL != "/author/ann/" {
		t.Errorf("author = %+v", a)
	}
}

func TestThumbnailLifecycle(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, PostInput{Slug: "park", Title: "Park", PublishedAt: testDate})

	id, err := s.SaveImage(Image{
		Filename: "park.jpg", ThumbFilename: "park-thumb.jpg", Alt: "Pond",
		Width: 1200, Height: 800, ThumbWidth: 800, ThumbHeight: 533, UploadedAt: "2024-05-01T09:30:00Z",
	})
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if err := s.SetThumbnail("park", id); err != nil {
		t.Fatalf("SetThumbnail failed: %v", err)
	}
	if err := s.SetThumbnail("missing", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetThumbnail(missing) error = %v, want ErrNotFound", err)
	}

	got, err := s.GetPost("park")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Thumbnail == nil {
		t.Fatal("expected thumbnail")
	}
	want := map[string]templatetags.ImageSize{
		templatetags.SizeFull:          {URL: "/public/uploads/park.jpg", Width: 1200, Height: 800},
		templatetags.SizePostThumbnail: {URL: "/public/uploads/park-thumb.jpg", Width: 800, Height: 533},
	}
	if diff := cmp.Diff(want, got.Thumbnail.Sizes); diff != "" {
		t.Errorf("sizes mismatch (-want +got):\n%s", diff)
	}
	if got.Thumbnail.Alt != "Pond" {
		t.Errorf("Alt = %q, want Pond", got.Thumbnail.Alt)
	}

	for _, name := range []string{"park.jpg", "park-thumb.jpg"} {
		exists, err := s.ImageExists(name)
		if err != nil || !exists {
			t.Errorf("ImageExists(%q) = %v, %v", name, exists, err)
		}
	}

	if err := s.DeleteImage("park.jpg"); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}
	got, err = s.GetPost("park")
	if err != nil {
		t.Fatalf("GetPost after delete failed: %v", err)
	}
	if got.Thumbnail != nil {
		t.Errorf("thumbnail should be cleared after image delete, got %+v", got.Thumbnail)
	}
}

func TestCheckPassword(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, PostInput{Slug: "secret", Title: "Secret", PublishedAt: testDate, Password: "hunter2"})
	savePost(t, s, PostInput{Slug: "open", Title: "Open", PublishedAt: testDate})

	p, err := s.GetPost("secret")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if !p.PasswordProtected {
		t.Error("expected PasswordProtected")
	}

	tests := []struct {
		slug, password string
		want           bool
	}{
		{"secret", "hunter2", true},
		{"secret", "wrong", false},
		{"secret", "", false},
		{"open", "anything", true},
	}
	for _, tt := range tests {
		got, err := s.CheckPassword(tt.slug, tt.password)
		if err != nil {
			t.Fatalf("CheckPassword(%q) failed: %v", tt.slug, err)
		}
		if got != tt.want {
			t.Errorf("CheckPassword(%q, %q) = %v, want %v", tt.slug, tt.password, got, tt.want)
		}
	}
	if _, err := s.CheckPassword("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CheckPassword(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRenameAndDeletePost(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, PostInput{Slug: "before", Title: "T", PublishedAt: testDate,
		Terms: map[string][]string{templatetags.TaxonomyTag: {"kept"}}})

	if err := s.RenamePost("before", "after"); err != nil {
		t.Fatalf("RenamePost failed: %v", err)
	}
	got, err := s.GetPost("after")
	if err != nil {
		t.Fatalf("GetPost(after) failed: %v", err)
	}
	if len(got.TermsOf(templatetags.TaxonomyTag)) != 1 {
		t.Errorf("terms lost on rename: %+v", got.Terms)
	}
	if err := s.RenamePost("before", "again"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RenamePost(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.DeletePost("after"); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := s.GetPostAny("after"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPostAny after delete error = %v, want ErrNotFound", err)
	}
}

func TestAttachmentType(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, PostInput{Slug: "photo", Title: "Photo", Type: templatetags.TypeAttachment, PublishedAt: testDate})
	p, err := s.GetPost("photo")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if !p.Attachment {
		t.Error("expected Attachment for attachment type")
	}
}
