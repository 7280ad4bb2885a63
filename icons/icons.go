// Package icons maps taxonomy term slugs to sprite icons.
//
// A Set is loaded from YAML:
//
//	sprite: /public/icons/sprite.svg
//	terms:
//	  default: {icon: pin, color: "#555555"}
//	  hospital: {icon: cross, color: "#c0392b"}
//
// Unknown slugs resolve to the "default" entry.
package icons

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSlug is the entry used when a slug has no props of its own.
const DefaultSlug = "default"

// Props are the style properties of a term icon.
type Props struct {
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"` // CSS background of the masked icon; hex or a color name
}

var reColor = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+)$`)

// Set is an immutable slug -> Props table.
type Set struct {
	SpriteURL string
	terms     map[string]Props
}

type fileFormat struct {
	Sprite string           `yaml:"sprite"`
	Terms  map[string]Props `yaml:"terms"`
}

// Load reads a Set from YAML.
func Load(r io.Reader) (*Set, error) {
	var f fileFormat
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("icons: decode: %w", err)
	}
	if f.Sprite == "" {
		return nil, fmt.Errorf("icons: sprite url is required")
	}
	if _, ok := f.Terms[DefaultSlug]; !ok {
		return nil, fmt.Errorf("icons: %q entry is required", DefaultSlug)
	}
	terms := make(map[string]Props, len(f.Terms))
	for slug, p := range f.Terms {
		if p.Icon == "" {
			p.Icon = slug
		}
		if p.Color != "" && !reColor.MatchString(p.Color) {
			return nil, fmt.Errorf("icons: %s: invalid color %q", slug, p.Color)
		}
		terms[normalizeSlug(slug)] = p
	}
	return &Set{SpriteURL: f.Sprite, terms: terms}, nil
}

// New builds a Set from an in-memory table. A missing default entry is
// filled with an icon named "default".
func New(spriteURL string, terms map[string]Props) *Set {
	t := make(map[string]Props, len(terms)+1)
	for slug, p := range terms {
		t[normalizeSlug(slug)] = p
	}
	if _, ok := t[DefaultSlug]; !ok {
		t[DefaultSlug] = Props{Icon: DefaultSlug}
	}
	return &Set{SpriteURL: spriteURL, terms: t}
}

// PropsFor returns the props for slug, or the default entry.
func (s *Set) PropsFor(slug string) Props {
	if p, ok := s.terms[normalizeSlug(slug)]; ok {
		return p
	}
	return s.terms[DefaultSlug]
}

// SpriteSrc returns the sprite fragment URL for props.
func (s *Set) SpriteSrc(p Props) string {
	return s.SpriteURL + "#" + p.Icon
}

// Slugs lists the slugs that have their own entry.
func (s *Set) Slugs() []string {
	out := make([]string, 0, len(s.terms))
	for slug := range s.terms {
		out = append(out, slug)
	}
	return out
}

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
