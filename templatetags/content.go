package templatetags

import (
	"strconv"
	"strings"

	"github.com/eringen/entrymeta/markdown"
)

// PageBreak splits a post body into pages.
const PageBreak = "<!--nextpage-->"

// MarkdownFilter renders markdown bodies and passes HTML bodies through.
type MarkdownFilter struct{}

// Filter implements ContentFilter.
func (MarkdownFilter) Filter(format, body string) string {
	if format == FormatMarkdown {
		return markdown.Render(body)
	}
	return body
}

// Pages splits body on PageBreak. A body without breaks is one page.
func Pages(body string) []string {
	body = strings.ReplaceAll(body, "\n"+PageBreak+"\n", PageBreak)
	body = strings.ReplaceAll(body, "\n"+PageBreak, PageBreak)
	body = strings.ReplaceAll(body, PageBreak+"\n", PageBreak)
	return strings.Split(body, PageBreak)
}

// page returns the 1-based page q asks for, clamped to the pages present.
func page(q Query, n int) int {
	switch {
	case q.Page < 1:
		return 1
	case q.Page > n:
		return n
	}
	return q.Page
}

// Content returns the HTML of the requested page of the post body.
func (r *Renderer) Content(q Query) string {
	pages := Pages(q.Post.Content)
	return r.content.Filter(q.Post.ContentFormat, pages[page(q, len(pages))-1])
}

// PageURL returns the link to page n of a post.
func PageURL(p Post, n int) string {
	if n <= 1 {
		return p.Permalink
	}
	return strings.TrimSuffix(p.Permalink, "/") + "/" + strconv.Itoa(n) + "/"
}

// PageLinks renders the links between the pages of a split body, or nothing
// for a single page or a locked post.
func (r *Renderer) PageLinks(q Query) string {
	if q.PasswordRequired() {
		return ""
	}
	n := len(Pages(q.Post.Content))
	if n < 2 {
		return ""
	}
	cur := page(q, n)
	var b strings.Builder
	b.WriteString(`<div class="page-links">` + r.phrase("", "Pages:"))
	for i := 1; i <= n; i++ {
		num := strconv.Itoa(i)
		b.WriteString(" ")
		if i == cur {
			b.WriteString(`<span class="post-page-numbers current" aria-current="page">` + num + `</span>`)
			continue
		}
		b.WriteString(`<a href="` + EscapeURL(PageURL(q.Post, i)) + `" class="post-page-numbers">` + num + `</a>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// PostClass returns the class list of a post's article element.
func PostClass(p Post) string {
	id := strconv.FormatInt(p.ID, 10)
	classes := []string{"post-" + id, p.Type, "type-" + p.Type}
	if p.Published {
		classes = append(classes, "status-publish")
	} else {
		classes = append(classes, "status-draft")
	}
	if p.Thumbnail != nil {
		classes = append(classes, "has-post-thumbnail")
	}
	classes = append(classes, "hentry")
	for _, t := range p.TermsOf(TaxonomyCategory) {
		classes = append(classes, "category-"+t.Slug)
	}
	for _, t := range p.TermsOf(TaxonomyTag) {
		classes = append(classes, "tag-"+t.Slug)
	}
	return strings.Join(classes, " ")
}

// ContentPage renders a page article. The header with the title and byline
// is left out on the front page.
func (r *Renderer) ContentPage(q Query) string {
	p := q.Post
	var b strings.Builder
	b.WriteString(`<article id="post-` + strconv.FormatInt(p.ID, 10) + `" class="` + EscapeHTML(PostClass(p)) + `">`)
	if !q.FrontPage {
		b.WriteString(`<header class="entry-header"><h1 class="entry-title">` + EscapeHTML(p.Title) + `</h1>`)
		b.WriteString(`<div class="entry-meta">` + r.Byline(q) + `</div></header>`)
	}
	b.WriteString(`<div class="entry-content">` + r.Content(q) + r.PageLinks(q) + `</div>`)
	b.WriteString(`</article>`)
	return b.String()
}
