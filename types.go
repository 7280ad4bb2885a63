package entrymeta

import (
	"time"

	"github.com/eringen/entrymeta/templatetags"
)

// ListFilter narrows ListPosts. Zero fields do not filter.
type ListFilter struct {
	Type       string // post type, e.g. "post" or "location"
	Taxonomy   string // only posts with a term in this taxonomy
	TermSlug   string // with Taxonomy: only posts assigned this term
	AuthorSlug string
}

// PostInput is everything SavePost writes for one post.
type PostInput struct {
	Slug          string
	Title         string
	Type          string
	Content       string
	ContentFormat string // templatetags.FormatHTML (default) or FormatMarkdown
	AuthorSlug    string
	PublishedAt   time.Time
	ModifiedAt    time.Time // zero means PublishedAt
	Password      string    // empty means not protected
	CommentsOpen  bool
	CommentCount  int
	Published     bool
	Terms         map[string][]string // taxonomy -> term names, in order
	Meta          map[string][]string // custom fields, values in order
}

// Image is an uploaded featured image with its generated variants.
type Image struct {
	ID            int64
	Filename      string // full size
	ThumbFilename string // post-thumbnail size
	OriginalName  string
	Alt           string
	Width         int
	Height        int
	ThumbWidth    int
	ThumbHeight   int
	Size          int
	UploadedAt    string
}

// Permalink returns the public path of a post of type typ.
func Permalink(typ, slug string) string {
	if typ == templatetags.TypePage {
		return "/page/" + slug + "/"
	}
	return "/blog/" + slug + "/"
}

// TermURL returns the archive path of a term.
func TermURL(taxonomy, slug string) string {
	switch taxonomy {
	case templatetags.TaxonomyCategory:
		return "/category/" + slug + "/"
	case templatetags.TaxonomyTag:
		return "/tag/" + slug + "/"
	case templatetags.TaxonomyLocationTypes:
		return "/location-types/" + slug + "/"
	}
	return "/" + taxonomy + "/" + slug + "/"
}

// AuthorURL returns the archive path of an author.
func AuthorURL(slug string) string {
	return "/author/" + slug + "/"
}

// UploadURL returns the public path of an uploaded file.
func UploadURL(filename string) string {
	return "/public/" + uploadsSubdir + "/" + filename
}

func (img Image) templateImage() *templatetags.Image {
	sizes := map[string]templatetags.ImageSize{
		templatetags.SizeFull: {URL: UploadURL(img.Filename), Width: img.Width, Height: img.Height},
	}
	if img.ThumbFilename != "" {
		sizes[templatetags.SizePostThumbnail] = templatetags.ImageSize{
			URL: UploadURL(img.ThumbFilename), Width: img.ThumbWidth, Height: img.ThumbHeight,
		}
	}
	return &templatetags.Image{ID: img.ID, Filename: img.Filename, Alt: img.Alt, Sizes: sizes}
}
