package templatetags

import "github.com/eringen/entrymeta/icons"

// Variant is the presentation chosen for a post thumbnail.
type Variant int

const (
	VariantNone         Variant = iota // password required or attachment view
	VariantSingular                    // full image in a block wrapper
	VariantListing                     // linked, size-limited image
	VariantQueriedIcon                 // icon of the archive's queried term
	VariantFallbackIcon                // icon of the post's last location type
)

func (v Variant) String() string {
	switch v {
	case VariantNone:
		return "none"
	case VariantSingular:
		return "singular"
	case VariantListing:
		return "listing"
	case VariantQueriedIcon:
		return "queried-icon"
	case VariantFallbackIcon:
		return "fallback-icon"
	}
	return "unknown"
}

// ThumbnailVariant picks the thumbnail presentation for q. An image always
// wins over the term icons.
func (r *Renderer) ThumbnailVariant(q Query) Variant {
	if q.PasswordRequired() || q.View.IsAttachment() || q.Post.Attachment {
		return VariantNone
	}
	hasThumb := q.Post.Thumbnail != nil
	switch {
	case hasThumb && q.View.IsSingular():
		return VariantSingular
	case hasThumb:
		return VariantListing
	}
	if _, ok := q.queriedSlug(); ok {
		return VariantQueriedIcon
	}
	return VariantFallbackIcon
}

// IconSlug returns the slug whose icon stands in for a missing image: the
// queried term, else the post's last location type, else "default".
func (r *Renderer) IconSlug(q Query) string {
	if slug, ok := q.queriedSlug(); ok {
		return slug
	}
	terms := q.Post.TermsOf(TaxonomyLocationTypes)
	if len(terms) > 0 && terms[len(terms)-1].Slug != "" {
		return terms[len(terms)-1].Slug
	}
	return icons.DefaultSlug
}

// Thumbnail renders the post thumbnail, or "" when none is shown.
func (r *Renderer) Thumbnail(q Query) string {
	p := q.Post
	switch r.ThumbnailVariant(q) {
	case VariantSingular:
		return `<div class="post-thumbnail">` + r.thumbs.Thumbnail(p.Thumbnail, SizeFull, "") + `</div>`
	case VariantListing:
		return decorativeLink("post-thumbnail", "", p.Permalink) +
			r.thumbs.Thumbnail(p.Thumbnail, SizePostThumbnail, p.Title) + `</a>`
	case VariantQueriedIcon, VariantFallbackIcon:
		props := r.icons.PropsFor(r.IconSlug(q))
		style := "mask-image: url(" + r.icons.SpriteSrc(props) + ")"
		if props.Color != "" {
			style += "; background-color: " + props.Color
		}
		return `<span class="gbc-mask-container">` +
			decorativeLink("post-thumbnail gbc-mask-svg", style, p.Permalink) +
			`</a></span>`
	}
	return ""
}

// decorativeLink opens an anchor hidden from assistive technology and
// removed from the tab order.
func decorativeLink(class, style, href string) string {
	s := `<a class="` + class + `"`
	if style != "" {
		s += ` style="` + EscapeHTML(style) + `"`
	}
	return s + ` href="` + EscapeURL(href) + `" aria-hidden="true" tabindex="-1">`
}
