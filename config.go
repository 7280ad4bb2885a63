package entrymeta

import (
	"fmt"
	"time"

	"github.com/eringen/entrymeta/views"
)

// SiteConfig holds all configuration for an entrymeta site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/site.db")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	PostCacheTTL time.Duration // Post cache TTL (default 5min)
	FrontPage    string        // Optional page slug shown at "/" instead of the post index

	DateFormat       string // Go layout for visible dates (default "January 2, 2006")
	Timezone         string // IANA zone dates are shown in (default "UTC")
	Language         string // BCP 47 tag phrases are printed in (default "en")
	TeamAuthorURL    string // Byline link for multi-author posts (default "/author/gbc-team/")
	IconsPath        string // Optional YAML icon table replacing the embedded one
	TranslationsPath string // Optional YAML translations
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.DateFormat == "" {
		c.DateFormat = "January 2, 2006"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.TeamAuthorURL == "" {
		c.TeamAuthorURL = "/author/gbc-team/"
	}
}

func (c SiteConfig) location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("entrymeta: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c SiteConfig) site() views.Site {
	return views.Site{Name: c.Name, URL: c.URL, Description: c.Description}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithViews replaces the default page components. Nil fields keep defaults.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
