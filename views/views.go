// Package views holds the default page components of an entrymeta site. The
// metadata fragments inside each page come from a templatetags.Renderer.
package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/entrymeta/templatetags"
)

// Views renders full pages for one site.
type Views struct {
	site Site
	r    *templatetags.Renderer
}

// New returns the default views for site.
func New(site Site, r *templatetags.Renderer) *Views {
	return &Views{site: site, r: r}
}

type writer struct {
	strings.Builder
}

func (w *writer) put(parts ...string) {
	for _, p := range parts {
		w.WriteString(p)
	}
}

// component renders body through fn once per Render call.
func component(fn func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		var w writer
		fn(&w)
		_, err := io.WriteString(out, w.String())
		return err
	})
}

func (v *Views) layout(meta PageMeta, body func(w *writer)) templ.Component {
	return component(func(w *writer) {
		title := v.site.Name
		if meta.Title != "" && meta.Title != v.site.Name {
			title = meta.Title + " – " + v.site.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = v.site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		w.put(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`, templatetags.EscapeHTML(title), `</title>`)
		if desc != "" {
			w.put(`<meta name="description" content="`, templatetags.EscapeHTML(desc), `">`)
		}
		if meta.URL != "" {
			w.put(`<link rel="canonical" href="`, templatetags.EscapeURL(meta.URL), `">`,
				`<meta property="og:url" content="`, templatetags.EscapeURL(meta.URL), `">`)
		}
		w.put(`<meta property="og:title" content="`, templatetags.EscapeHTML(title), `">`,
			`<meta property="og:type" content="`, templatetags.EscapeHTML(ogType), `">`,
			`<link rel="alternate" type="application/rss+xml" title="`, templatetags.EscapeHTML(v.site.Name), `" href="/feed.xml">`,
			`<link rel="stylesheet" href="/public/style.css">`)
		if meta.JSONLD != "" {
			w.put(`<script type="application/ld+json">`, strings.ReplaceAll(meta.JSONLD, "</", `<\/`), `</script>`)
		}
		w.put(`</head><body><div id="page" class="site">`,
			`<header id="masthead" class="site-header"><p class="site-title"><a href="/" rel="home">`, templatetags.EscapeHTML(v.site.Name), `</a></p>`)
		if v.site.Description != "" {
			w.put(`<p class="site-description">`, templatetags.EscapeHTML(v.site.Description), `</p>`)
		}
		w.put(`<nav class="main-navigation"><a href="/">Home</a> <a href="/locations/">Locations</a></nav></header>`,
			`<main id="primary" class="site-main">`)
		body(w)
		w.put(`</main><footer class="site-footer"><a href="/feed.xml">RSS</a></footer></div></body></html>`)
	})
}

// entry writes one post of a listing.
func (v *Views) entry(w *writer, q templatetags.Query) {
	p := q.Post
	w.put(`<article id="post-`, strconv.FormatInt(p.ID, 10), `" class="`, templatetags.EscapeHTML(templatetags.PostClass(p)), `">`,
		`<header class="entry-header"><h2 class="entry-title"><a href="`, templatetags.EscapeURL(p.Permalink), `" rel="bookmark">`,
		templatetags.EscapeHTML(p.Title), `</a></h2>`)
	if p.Type == templatetags.TypePost {
		w.put(`<div class="entry-meta">`, v.r.DateStamp(q), v.r.Byline(q), `</div>`)
	}
	w.put(`</header>`, v.r.Thumbnail(q),
		`<footer class="entry-footer">`, v.r.EntryFooter(q), `</footer></article>`)
}

// Listing renders an index or archive page.
func (v *Views) Listing(heading string, entries []templatetags.Query) templ.Component {
	return v.layout(PageMeta{Title: heading, URL: v.site.URL, JSONLD: WebsiteJsonLD(v.site)}, func(w *writer) {
		if heading != "" {
			w.put(`<header class="page-header"><h1 class="page-title">`, templatetags.EscapeHTML(heading), `</h1></header>`)
		}
		if len(entries) == 0 {
			w.put(`<section class="no-results not-found"><p>Nothing found.</p></section>`)
			return
		}
		for _, q := range entries {
			v.entry(w, q)
		}
	})
}

// Single renders one post with its full content.
func (v *Views) Single(q templatetags.Query, csrfToken string) templ.Component {
	p := q.Post
	meta := PageMeta{
		Title:  p.Title,
		URL:    templatetags.AbsURL(v.site.URL, p.Permalink),
		OGType: "article",
		JSONLD: BlogPostingJsonLD(v.site, v.r, p),
	}
	return v.layout(meta, func(w *writer) {
		w.put(`<article id="post-`, strconv.FormatInt(p.ID, 10), `" class="`, templatetags.EscapeHTML(templatetags.PostClass(p)), `">`,
			`<header class="entry-header"><h1 class="entry-title">`, templatetags.EscapeHTML(p.Title), `</h1>`)
		if p.Type == templatetags.TypePost {
			w.put(`<div class="entry-meta">`, v.r.DateStamp(q), v.r.Byline(q), `</div>`)
		}
		w.put(`</header>`, v.r.Thumbnail(q), `<div class="entry-content">`)
		if q.PasswordRequired() {
			w.put(passwordForm(p, csrfToken))
		} else {
			w.put(v.r.Content(q), v.r.PageLinks(q))
		}
		w.put(`</div><footer class="entry-footer">`, v.r.EntryFooter(q), `</footer></article>`)
	})
}

// Page renders a page through the content-page partial.
func (v *Views) Page(q templatetags.Query, csrfToken string) templ.Component {
	meta := PageMeta{Title: q.Post.Title, URL: templatetags.AbsURL(v.site.URL, q.Post.Permalink)}
	if q.PasswordRequired() {
		q.Post.Content = passwordForm(q.Post, csrfToken)
		q.Post.ContentFormat = templatetags.FormatHTML
	}
	return v.layout(meta, func(w *writer) {
		w.put(v.r.ContentPage(q))
	})
}

func passwordForm(p templatetags.Post, csrfToken string) string {
	return `<form action="/unlock/` + templatetags.EscapeHTML(p.Slug) + `/" class="post-password-form" method="post">` +
		`<p>This content is password protected. To view it please enter your password below:</p>` +
		`<input type="hidden" name="_csrf" value="` + templatetags.EscapeHTML(csrfToken) + `">` +
		`<p><label for="pwbox-` + strconv.FormatInt(p.ID, 10) + `">Password: <input name="post_password" id="pwbox-` +
		strconv.FormatInt(p.ID, 10) + `" type="password" size="20"></label> <input type="submit" name="Submit" value="Enter"></p></form>`
}

// NotFound renders the 404 page.
func (v *Views) NotFound() templ.Component {
	return v.layout(PageMeta{Title: "Page not found"}, func(w *writer) {
		w.put(`<section class="error-404 not-found"><header class="page-header"><h1 class="page-title">Oops! That page can&#39;t be found.</h1></header></section>`)
	})
}

// ServerError renders the 500 page.
func (v *Views) ServerError() templ.Component {
	return v.layout(PageMeta{Title: "Server error"}, func(w *writer) {
		w.put(`<section class="error-500"><header class="page-header"><h1 class="page-title">Something went wrong.</h1></header></section>`)
	})
}
