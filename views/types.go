package views

// Site holds site-wide settings every page needs.
type Site struct {
	Name        string
	URL         string
	Description string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string // optional structured data
}

// PostForm is the admin edit form's view of a post.
type PostForm struct {
	Slug              string
	Title             string
	Type              string
	Content           string
	ContentFormat     string // templatetags.FormatHTML or FormatMarkdown
	Author            string // display name
	Published         bool
	CommentsOpen      bool
	PasswordProtected bool
	Categories        string // comma separated term names
	Tags              string
	LocationTypes     string
	MultipleAuthors   string
	ThumbnailURL      string
}
