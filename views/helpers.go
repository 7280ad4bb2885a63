package views

import (
	"encoding/json"
	"strings"

	"github.com/eringen/entrymeta/templatetags"
)

// termNames lists the names of a post's terms in one taxonomy.
func termNames(p templatetags.Post, taxonomy string) []string {
	terms := p.TermsOf(taxonomy)
	names := make([]string, 0, len(terms))
	for _, t := range terms {
		names = append(names, t.Name)
	}
	return names
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block.
func WebsiteJsonLD(site Site) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      templatetags.BuildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a
// post, with the author resolved the same way the byline resolves it.
func BlogPostingJsonLD(site Site, r *templatetags.Renderer, p templatetags.Post) string {
	postURL := templatetags.AbsURL(site.URL, p.Permalink)
	name, href := r.ResolveAuthor(p)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      p.Title,
		"datePublished": p.PublishedAt.Format(templatetags.W3CLayout),
		"dateModified":  p.ModifiedAt.Format(templatetags.W3CLayout),
		"url":           postURL,
		"author": map[string]string{
			"@type": "Person",
			"name":  name,
			"url":   templatetags.AbsURL(site.URL, href),
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if tags := termNames(p, templatetags.TaxonomyTag); len(tags) > 0 {
		data["keywords"] = strings.Join(tags, ", ")
	}
	if s, ok := p.Thumbnail.Size(templatetags.SizeFull); ok {
		data["image"] = templatetags.AbsURL(site.URL, s.URL)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
