package templatetags

import "time"

// Post types that the footer treats specially.
const (
	TypePost       = "post"
	TypePage       = "page"
	TypeAttachment = "attachment"
)

// Stored body formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Taxonomy names.
const (
	TaxonomyCategory      = "category"
	TaxonomyTag           = "post_tag"
	TaxonomyLocationTypes = "location_types"
)

// MetaMultipleAuthors is the custom field that overrides a post's byline.
const MetaMultipleAuthors = "multiple_authors"

// Image size names understood by the Thumbnailer.
const (
	SizeFull          = "full"
	SizePostThumbnail = "post-thumbnail"
)

// Post is a read-only projection of a stored post for a single render.
type Post struct {
	ID                int64
	Slug              string
	Title             string
	Type              string
	Content           string
	ContentFormat     string // FormatHTML or FormatMarkdown; empty is HTML
	Permalink         string
	PublishedAt       time.Time
	ModifiedAt        time.Time
	PasswordProtected bool
	Attachment        bool
	Published         bool
	Author            Author
	Meta              map[string][]string // custom fields, values in insertion order
	Terms             map[string][]Term   // taxonomy -> terms in assignment order
	Comments          CommentState
	Thumbnail         *Image
}

// TermsOf returns the post's terms in taxonomy, or nil.
func (p Post) TermsOf(taxonomy string) []Term {
	return p.Terms[taxonomy]
}

// MetaValues returns the custom field values stored under key.
func (p Post) MetaValues(key string) []string {
	return p.Meta[key]
}

// Author is the single registered author of a post.
type Author struct {
	ID          int64
	Slug        string
	DisplayName string
	PostsURL    string
}

// Term is a taxonomy term such as a category, tag or location type.
type Term struct {
	Taxonomy string
	Name     string
	Slug     string
	URL      string
}

// CommentState is the discussion status of a post.
type CommentState struct {
	Open  bool
	Count int
}

// ImageSize is one rendered variant of an image.
type ImageSize struct {
	URL    string
	Width  int
	Height int
}

// Image is a featured image with its generated size variants.
type Image struct {
	ID       int64
	Filename string
	Alt      string
	Sizes    map[string]ImageSize
}

// Size returns the named variant, falling back to full.
func (img *Image) Size(name string) (ImageSize, bool) {
	if img == nil {
		return ImageSize{}, false
	}
	if s, ok := img.Sizes[name]; ok {
		return s, true
	}
	s, ok := img.Sizes[SizeFull]
	return s, ok
}

// View classifies the page being rendered.
type View int

const (
	ViewIndex View = iota
	ViewArchive
	ViewSingle
	ViewPage
	ViewAttachment
)

// IsSingle reports a single post view (attachments included, pages not).
func (v View) IsSingle() bool {
	return v == ViewSingle || v == ViewAttachment
}

// IsSingular reports a view that shows exactly one content item.
func (v View) IsSingular() bool {
	return v == ViewSingle || v == ViewPage || v == ViewAttachment
}

// IsAttachment reports an attachment view.
func (v View) IsAttachment() bool {
	return v == ViewAttachment
}

func (v View) String() string {
	switch v {
	case ViewIndex:
		return "index"
	case ViewArchive:
		return "archive"
	case ViewSingle:
		return "single"
	case ViewPage:
		return "page"
	case ViewAttachment:
		return "attachment"
	}
	return "unknown"
}

// Viewer describes the visitor a page is rendered for.
type Viewer struct {
	CanEdit bool
}

// Query is the content query context for one render. Formatters only read it.
type Query struct {
	Post             Post
	View             View
	FrontPage        bool
	QueriedTerm      *Term // nil outside term archives
	PasswordAccepted bool
	Viewer           Viewer
	Page             int // page of a body split by PageBreak, 1-based; 0 is 1
}

// PasswordRequired reports whether the post is protected and still locked.
func (q Query) PasswordRequired() bool {
	return q.Post.PasswordProtected && !q.PasswordAccepted
}

// queriedSlug returns the queried term's slug if one is set.
func (q Query) queriedSlug() (string, bool) {
	if q.QueriedTerm == nil || q.QueriedTerm.Slug == "" {
		return "", false
	}
	return q.QueriedTerm.Slug, true
}
