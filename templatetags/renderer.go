// Package templatetags renders the metadata fragments of a post: the date
// stamp, the byline, the entry footer and the post thumbnail.
//
// Every formatter is a method on Renderer that takes an explicit Query and
// returns an HTML string. Nothing is read from ambient state and nothing is
// written, so a Renderer is safe for concurrent use. The services the
// formatters call into (translation, sanitizing, icons, edit and comment
// links, image tags) are interfaces with defaults that a host can replace.
package templatetags

import (
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/entrymeta/i18n"
	"github.com/eringen/entrymeta/icons"
	"github.com/eringen/entrymeta/sanitize"
)

// Localizer resolves phrase templates and count phrases for a text domain.
type Localizer interface {
	// Format translates key, escapes the translation and then substitutes
	// args, which are inserted as given.
	Format(domain, context, key string, escape func(string) string, args ...string) string
	Plural(domain, key string, n int) string
}

// Sanitizer lets only <span class="..."> through a phrase.
type Sanitizer interface {
	AllowSpanClass(fragment string) string
}

// IconLookup maps a taxonomy slug to a sprite URL.
type IconLookup interface {
	PropsFor(slug string) icons.Props
	SpriteSrc(p icons.Props) string
}

// EditLinker renders the edit link for the viewer, or nothing when the viewer
// may not edit the post.
type EditLinker interface {
	EditLink(q Query, text, before, after string) string
}

// CommentsLinker renders the link to a post's comments. zero is the phrase
// used when the post has no comments yet.
type CommentsLinker interface {
	CommentsPopupLink(q Query, zero string) string
}

// ContentFilter turns one page of a stored body into HTML.
type ContentFilter interface {
	Filter(format, body string) string
}

// Thumbnailer renders an image element for one size of img.
type Thumbnailer interface {
	Thumbnail(img *Image, size, alt string) string
}

// Config holds the operator-controlled settings of a Renderer.
type Config struct {
	TextDomain    string         // default i18n.DefaultDomain
	DateFormat    string         // Go layout for visible dates (default "January 2, 2006")
	Location      *time.Location // dates are shown in this zone; nil keeps the stored zone
	TeamAuthorURL string         // byline link for multi-author posts (default "/author/gbc-team/")
	EditPath      string         // prefix of the default edit link (default "/admin/post/")
	SpriteURL     string         // sprite used when no IconLookup is given
}

func (c *Config) setDefaults() {
	if c.TextDomain == "" {
		c.TextDomain = i18n.DefaultDomain
	}
	if c.DateFormat == "" {
		c.DateFormat = "January 2, 2006"
	}
	if c.TeamAuthorURL == "" {
		c.TeamAuthorURL = "/author/gbc-team/"
	}
	if c.EditPath == "" {
		c.EditPath = "/admin/post/"
	}
	if c.SpriteURL == "" {
		c.SpriteURL = "/public/icons/sprite.svg"
	}
}

// Renderer renders post metadata fragments.
type Renderer struct {
	cfg      Config
	loc      Localizer
	san      Sanitizer
	icons    IconLookup
	edit     EditLinker
	comments CommentsLinker
	thumbs   Thumbnailer
	content  ContentFilter
}

// Option replaces one of the Renderer's collaborators.
type Option func(*Renderer)

// WithLocalizer sets the phrase translator.
func WithLocalizer(l Localizer) Option {
	return func(r *Renderer) { r.loc = l }
}

// WithSanitizer sets the phrase sanitizer.
func WithSanitizer(s Sanitizer) Option {
	return func(r *Renderer) { r.san = s }
}

// WithIcons sets the term icon lookup.
func WithIcons(i IconLookup) Option {
	return func(r *Renderer) { r.icons = i }
}

// WithEditLinker sets the edit link renderer.
func WithEditLinker(e EditLinker) Option {
	return func(r *Renderer) { r.edit = e }
}

// WithCommentsLinker sets the comments link renderer.
func WithCommentsLinker(c CommentsLinker) Option {
	return func(r *Renderer) { r.comments = c }
}

// WithThumbnailer sets the image tag renderer.
func WithThumbnailer(t Thumbnailer) Option {
	return func(r *Renderer) { r.thumbs = t }
}

// WithContentFilter sets the body filter.
func WithContentFilter(f ContentFilter) Option {
	return func(r *Renderer) { r.content = f }
}

// New creates a Renderer. Collaborators not set by opts get defaults.
func New(cfg Config, opts ...Option) *Renderer {
	cfg.setDefaults()
	r := &Renderer{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.loc == nil {
		r.loc = i18n.Default()
	}
	if r.san == nil {
		r.san = sanitize.New(sanitize.SpanClass)
	}
	if r.icons == nil {
		r.icons = icons.New(cfg.SpriteURL, nil)
	}
	if r.edit == nil {
		r.edit = PathEditLinker{Path: cfg.EditPath}
	}
	if r.comments == nil {
		r.comments = PopupCommentsLinker{Localizer: r.loc, Domain: cfg.TextDomain}
	}
	if r.thumbs == nil {
		r.thumbs = ImgThumbnailer{}
	}
	if r.content == nil {
		r.content = MarkdownFilter{}
	}
	return r
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Fragment wraps rendered markup as a templ component.
func Fragment(html string) templ.Component {
	return templ.Raw(html)
}

func (r *Renderer) phrase(context, key string, args ...string) string {
	return r.loc.Format(r.cfg.TextDomain, context, key, EscapeHTML, args...)
}

func (r *Renderer) markupPhrase(key string, args ...string) string {
	return r.loc.Format(r.cfg.TextDomain, "", key, r.san.AllowSpanClass, args...)
}
