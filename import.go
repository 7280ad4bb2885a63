package entrymeta

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/entrymeta/templatetags"
)

// importFile is the YAML layout read by Import:
//
//	authors:
//	  - {slug: ann, name: Ann Smith}
//	posts:
//	  - slug: city-library
//	    title: City Library
//	    format: markdown
//	    author: ann
//	    published_at: 2024-05-01T09:30:00Z
//	    location_types: [Library]
//	    multiple_authors: [Ann Smith, Bo Lee]
type importFile struct {
	Authors []struct {
		Slug string `yaml:"slug"`
		Name string `yaml:"name"`
	} `yaml:"authors"`
	Posts []importPost `yaml:"posts"`
}

type importPost struct {
	Slug            string              `yaml:"slug"`
	Title           string              `yaml:"title"`
	Type            string              `yaml:"type"`
	Content         string              `yaml:"content"`
	Format          string              `yaml:"format"` // html (default) or markdown
	Author          string              `yaml:"author"`
	PublishedAt     time.Time           `yaml:"published_at"`
	ModifiedAt      time.Time           `yaml:"modified_at"`
	Password        string              `yaml:"password"`
	CommentsOpen    *bool               `yaml:"comments_open"`
	CommentCount    int                 `yaml:"comment_count"`
	Draft           bool                `yaml:"draft"`
	Categories      []string            `yaml:"categories"`
	Tags            []string            `yaml:"tags"`
	LocationTypes   []string            `yaml:"location_types"`
	MultipleAuthors []string            `yaml:"multiple_authors"`
	Meta            map[string][]string `yaml:"meta"`
}

func (p importPost) input() PostInput {
	in := PostInput{
		Slug:          p.Slug,
		Title:         p.Title,
		Type:          p.Type,
		Content:       p.Content,
		ContentFormat: p.Format,
		AuthorSlug:    p.Author,
		PublishedAt:   p.PublishedAt,
		ModifiedAt:    p.ModifiedAt,
		Password:      p.Password,
		CommentsOpen:  p.CommentsOpen == nil || *p.CommentsOpen,
		CommentCount:  p.CommentCount,
		Published:     !p.Draft,
		Terms: map[string][]string{
			templatetags.TaxonomyCategory:      p.Categories,
			templatetags.TaxonomyTag:           p.Tags,
			templatetags.TaxonomyLocationTypes: p.LocationTypes,
		},
		Meta: map[string][]string{},
	}
	if in.Slug == "" {
		in.Slug = Slugify(p.Title)
	}
	for k, v := range p.Meta {
		in.Meta[k] = v
	}
	if len(p.MultipleAuthors) > 0 {
		in.Meta[templatetags.MetaMultipleAuthors] = p.MultipleAuthors
	}
	return in
}

// Import loads authors and posts from YAML into s and returns the number of
// posts written. Existing posts with the same slug are replaced.
func Import(s *Store, r io.Reader) (int, error) {
	var f importFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return 0, fmt.Errorf("import: decode: %w", err)
	}
	for _, a := range f.Authors {
		name := a.Name
		if name == "" {
			name = a.Slug
		}
		if _, err := s.SaveAuthor(a.Slug, name); err != nil {
			return 0, fmt.Errorf("import: %w", err)
		}
	}
	for i, p := range f.Posts {
		if _, err := s.SavePost(p.input()); err != nil {
			return i, fmt.Errorf("import: %w", err)
		}
	}
	return len(f.Posts), nil
}
