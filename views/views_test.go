package views

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/entrymeta/templatetags"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func testViews() *Views {
	return New(Site{Name: "Directory", URL: "https://example.com", Description: "Places"}, templatetags.New(templatetags.Config{}))
}

func protectedQuery() templatetags.Query {
	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return templatetags.Query{
		View: templatetags.ViewSingle,
		Post: templatetags.Post{
			ID: 7, Slug: "secret", Title: "Secret", Type: templatetags.TypePost,
			Permalink: "/blog/secret/", Content: "<p>hidden</p>",
			PublishedAt: ts, ModifiedAt: ts, PasswordProtected: true, Published: true,
			Author: templatetags.Author{DisplayName: "Ann", PostsURL: "/author/ann/"},
		},
	}
}

func TestSingleHidesProtectedContent(t *testing.T) {
	v := testViews()
	q := protectedQuery()

	out := render(t, v.Single(q, "tok"))
	if strings.Contains(out, "<p>hidden</p>") {
		t.Error("locked post leaked its content")
	}
	for _, want := range []string{`action="/unlock/secret/"`, `name="_csrf" value="tok"`, `id="pwbox-7"`} {
		if !strings.Contains(out, want) {
			t.Errorf("password form missing %q", want)
		}
	}

	q.PasswordAccepted = true
	out = render(t, v.Single(q, "tok"))
	if !strings.Contains(out, "<p>hidden</p>") {
		t.Error("unlocked post should show its content")
	}
	if strings.Contains(out, "post-password-form") {
		t.Error("unlocked post should not show the password form")
	}
}

func TestListingEmpty(t *testing.T) {
	out := render(t, testViews().Listing("Parks", nil))
	for _, want := range []string{`<h1 class="page-title">Parks</h1>`, "Nothing found.", "<title>Parks – Directory</title>"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q", want)
		}
	}
}

func TestBlogPostingJsonLDUsesResolvedAuthor(t *testing.T) {
	r := templatetags.New(templatetags.Config{TeamAuthorURL: "/author/team/"})
	p := protectedQuery().Post
	p.Meta = map[string][]string{templatetags.MetaMultipleAuthors: {"Bo", "Cy"}}

	var doc struct {
		Author struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"author"`
		DatePublished string `json:"datePublished"`
	}
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(Site{URL: "https://example.com"}, r, p)), &doc); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if doc.Author.Name != "Bo" || doc.Author.URL != "https://example.com/author/team/" {
		t.Errorf("author = %+v", doc.Author)
	}
	if doc.DatePublished != "2024-05-01T09:30:00+00:00" {
		t.Errorf("datePublished = %q", doc.DatePublished)
	}
}

func TestLayoutEscapesJSONLDScriptClose(t *testing.T) {
	v := New(Site{Name: "</script><b>x", URL: "https://example.com"}, templatetags.New(templatetags.Config{}))
	out := render(t, v.Listing("", nil))
	if strings.Contains(out, "</script><b>") {
		t.Error("site name broke out of the JSON-LD script")
	}
}
