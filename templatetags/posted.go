package templatetags

import (
	"strings"
	"time"
)

// W3CLayout formats a machine-readable datetime attribute.
const W3CLayout = "2006-01-02T15:04:05-07:00"

// DateStamp renders the "Posted on" fragment. Publish and modified times are
// compared to the second; when they differ both are shown, published first.
func (r *Renderer) DateStamp(q Query) string {
	p := q.Post
	published, modified := r.inZone(p.PublishedAt), r.inZone(p.ModifiedAt)

	var times strings.Builder
	if published.Unix() == modified.Unix() {
		r.writeTime(&times, "entry-date published updated", published)
	} else {
		r.writeTime(&times, "entry-date published", published)
		r.writeTime(&times, "updated", modified)
	}

	link := `<a href="` + EscapeURL(p.Permalink) + `" rel="bookmark">` + times.String() + `</a>`
	return `<span class="posted-on">` + r.phrase("post date", "Posted on %s", link) + `</span>`
}

func (r *Renderer) writeTime(b *strings.Builder, class string, t time.Time) {
	b.WriteString(`<time class="` + class + `" datetime="`)
	b.WriteString(EscapeHTML(t.Format(W3CLayout)))
	b.WriteString(`">`)
	b.WriteString(EscapeHTML(t.Format(r.cfg.DateFormat)))
	b.WriteString(`</time>`)
}

func (r *Renderer) inZone(t time.Time) time.Time {
	if r.cfg.Location == nil {
		return t
	}
	return t.In(r.cfg.Location)
}

// ResolveAuthor returns the byline name and link for p. A non-empty
// multiple_authors field wins over the registered author; only its first
// value is used and it links to the shared team page.
func (r *Renderer) ResolveAuthor(p Post) (name, href string) {
	if authors := p.MetaValues(MetaMultipleAuthors); len(authors) > 0 {
		return authors[0], r.cfg.TeamAuthorURL
	}
	return p.Author.DisplayName, p.Author.PostsURL
}

// Byline renders the "by" fragment with hCard author markup.
func (r *Renderer) Byline(q Query) string {
	name, href := r.ResolveAuthor(q.Post)
	author := `<span class="author vcard"><a class="url fn n" href="` + EscapeURL(href) + `">` + EscapeHTML(name) + `</a></span>`
	return `<span class="byline"> ` + r.phrase("post author", "by %s", author) + `</span>`
}
