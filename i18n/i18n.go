// Package i18n resolves theme phrases per text domain on top of
// golang.org/x/text/message.
package i18n

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// DefaultDomain is the text domain of the theme phrases.
const DefaultDomain = "gbc-underscores"

// contextSep joins a disambiguation context and a key, as gettext does.
const contextSep = "\x04"

// placeholderBase is the first rune used to stand in for raw arguments
// while the translated text is escaped.
const placeholderBase = '\uE000'

// Catalog holds translations for any number of text domains.
type Catalog struct {
	mu      sync.RWMutex
	lang    language.Tag
	domains map[string]*domain
}

type domain struct {
	b    *catalog.Builder
	keys map[string]map[language.Tag]struct{} // key -> languages it is set for
}

// NewCatalog returns an empty catalog that prints in lang.
func NewCatalog(lang language.Tag) *Catalog {
	return &Catalog{lang: lang, domains: make(map[string]*domain)}
}

// Default returns an English catalog with the theme's phrases registered.
func Default() *Catalog {
	return DefaultFor(language.English)
}

// DefaultFor returns a catalog printing in lang with the English theme
// phrases registered as fallback. Load adds the lang translations.
func DefaultFor(lang language.Tag) *Catalog {
	c := NewCatalog(lang)
	en := language.English
	for _, e := range []struct{ ctx, key, text string }{
		{"post date", "Posted on %s", "Posted on %s"},
		{"post author", "by %s", "by %s"},
		{"", ", ", ", "},
		{"list item separator", ", ", ", "},
		{"", "Posted in %s", "Posted in %s"},
		{"", "Tagged %s", "Tagged %s"},
		{"", `Leave a Comment<span class="screen-reader-text"> on %s</span>`, `Leave a Comment<span class="screen-reader-text"> on %s</span>`},
		{"", `Edit <span class="screen-reader-text">%s</span>`, `Edit <span class="screen-reader-text">%s</span>`},
		{"", "Comments Off", "Comments Off"},
		{"", "Pages:", "Pages:"},
	} {
		c.mustSet(DefaultDomain, en, e.ctx, e.key, e.text)
	}
	c.mustSetPlural(DefaultDomain, en, "%d Comments", "1 Comment", "%d Comments")
	return c
}

// Language returns the tag the catalog prints in.
func (c *Catalog) Language() language.Tag {
	return c.lang
}

// Set registers text as the translation of key (optionally disambiguated by
// context) in domain for lang.
func (c *Catalog) Set(domainName string, lang language.Tag, context, key, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.domainLocked(domainName)
	k := fullKey(context, key)
	if err := d.b.SetString(lang, k, text); err != nil {
		return fmt.Errorf("i18n: set %q: %w", k, err)
	}
	d.mark(k, lang)
	return nil
}

// SetPlural registers singular/plural forms for a count key such as
// "%d Comments".
func (c *Catalog) SetPlural(domainName string, lang language.Tag, key, one, other string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.domainLocked(domainName)
	if err := d.b.Set(lang, key, plural.Selectf(1, "%d", "=1", one, "other", other)); err != nil {
		return fmt.Errorf("i18n: set plural %q: %w", key, err)
	}
	d.mark(key, lang)
	return nil
}

func (c *Catalog) mustSet(domainName string, lang language.Tag, context, key, text string) {
	if err := c.Set(domainName, lang, context, key, text); err != nil {
		panic(err)
	}
}

func (c *Catalog) mustSetPlural(domainName string, lang language.Tag, key, one, other string) {
	if err := c.SetPlural(domainName, lang, key, one, other); err != nil {
		panic(err)
	}
}

func (c *Catalog) domainLocked(name string) *domain {
	d, ok := c.domains[name]
	if !ok {
		d = &domain{
			b:    catalog.NewBuilder(catalog.Fallback(language.English)),
			keys: make(map[string]map[language.Tag]struct{}),
		}
		c.domains[name] = d
	}
	return d
}

func (d *domain) mark(key string, lang language.Tag) {
	langs, ok := d.keys[key]
	if !ok {
		langs = make(map[language.Tag]struct{})
		d.keys[key] = langs
	}
	langs[lang] = struct{}{}
}

// resolve picks the language to print key in: the catalog language or one
// of its parents, then English. ok is false when key is set in neither.
func (d *domain) resolve(lang language.Tag, key string) (language.Tag, bool) {
	langs := d.keys[key]
	for t := lang; ; t = t.Parent() {
		if _, ok := langs[t]; ok {
			return t, true
		}
		if t == language.Und {
			break
		}
	}
	if _, ok := langs[language.English]; ok {
		return language.English, true
	}
	return lang, false
}

// printer returns a printer for domainName and the key to print with.
// Keys missing in the catalog language print in English; keys that were
// never registered print as themselves, without their context.
func (c *Catalog) printer(domainName, context, key string) (*message.Printer, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	plain := message.NewPrinter(c.lang, message.Catalog(catalog.NewBuilder()))
	d, ok := c.domains[domainName]
	if !ok {
		return plain, key
	}
	k := key
	if context != "" {
		if _, ok := d.keys[fullKey(context, key)]; ok {
			k = fullKey(context, key)
		}
	}
	lang, ok := d.resolve(c.lang, k)
	if !ok {
		return plain, key
	}
	return message.NewPrinter(lang, message.Catalog(d.b)), k
}

// Format translates key, passes the translated text through escape, and only
// then substitutes args for the %s verbs. Args are inserted unchanged, so
// they must already be safe for the output.
func (c *Catalog) Format(domainName, context, key string, escape func(string) string, args ...string) string {
	p, k := c.printer(domainName, context, key)
	stand := make([]interface{}, len(args))
	for i := range args {
		stand[i] = string(rune(placeholderBase + i))
	}
	out := p.Sprintf(k, stand...)
	if escape != nil {
		out = escape(out)
	}
	for i, a := range args {
		out = strings.ReplaceAll(out, string(rune(placeholderBase+i)), a)
	}
	return out
}

// Plural prints the count key for n, e.g. "%d Comments" -> "1 Comment".
func (c *Catalog) Plural(domainName, key string, n int) string {
	p, k := c.printer(domainName, "", key)
	return p.Sprintf(k, n)
}

// fileFormat is domain -> language -> entries.
type fileFormat map[string]map[string][]struct {
	Context string `yaml:"context"`
	Key     string `yaml:"key"`
	Text    string `yaml:"text"`
	One     string `yaml:"one"`
	Other   string `yaml:"other"`
}

// Load merges translations read from YAML into the catalog:
//
//	gbc-underscores:
//	  de:
//	    - {context: post date, key: "Posted on %s", text: "Veröffentlicht am %s"}
//	    - {key: "%d Comments", one: "1 Kommentar", other: "%d Kommentare"}
func (c *Catalog) Load(r io.Reader) error {
	var f fileFormat
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return fmt.Errorf("i18n: decode: %w", err)
	}
	for domainName, langs := range f {
		for langName, entries := range langs {
			lang, err := language.Parse(langName)
			if err != nil {
				return fmt.Errorf("i18n: language %q: %w", langName, err)
			}
			for _, e := range entries {
				if e.One != "" || e.Other != "" {
					err = c.SetPlural(domainName, lang, e.Key, e.One, e.Other)
				} else {
					err = c.Set(domainName, lang, e.Context, e.Key, e.Text)
				}
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func fullKey(context, key string) string {
	if context == "" {
		return key
	}
	return context + contextSep + key
}
