// Package entrymeta serves a blog or location directory whose post metadata
// (date stamp, byline, entry footer, thumbnail) is rendered by the
// templatetags package. It provides the sqlite store, cache, session
// handling and routes that build the query context for every page.
//
// Sites can replace any page component through ViewFuncs; the defaults live
// in the views package.
package entrymeta

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
	_ "modernc.org/sqlite"

	"github.com/eringen/entrymeta/i18n"
	"github.com/eringen/entrymeta/templatetags"
	"github.com/eringen/entrymeta/views"
)

// ViewFuncs holds the page components the handlers render. Nil fields are
// filled with the views package defaults.
type ViewFuncs struct {
	Listing        func(heading string, entries []templatetags.Query) templ.Component
	Single         func(q templatetags.Query, csrfToken string) templ.Component
	Page           func(q templatetags.Query, csrfToken string) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(posts []templatetags.Post, message string, csrfToken string) templ.Component
	AdminEdit      func(form views.PostForm, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central entrymeta application. It wires together the store,
// cache, renderer, handlers and middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *PostCache
	Renderer *templatetags.Renderer
	Views    ViewFuncs

	loginLimiter  *AttemptLimiter
	unlockLimiter *AttemptLimiter
	customRoutes  []func(*App)
	staticDir     string
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// NewRenderer builds the metadata renderer described by cfg: icon table,
// translations, display zone and date format.
func NewRenderer(cfg SiteConfig) (*templatetags.Renderer, error) {
	cfg.setDefaults()
	loc, err := cfg.location()
	if err != nil {
		return nil, err
	}
	set, err := loadIcons(cfg.IconsPath)
	if err != nil {
		return nil, err
	}
	lang, err := language.Parse(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("entrymeta: language %q: %w", cfg.Language, err)
	}
	catalog := i18n.DefaultFor(lang)
	if cfg.TranslationsPath != "" {
		f, err := os.Open(cfg.TranslationsPath)
		if err != nil {
			return nil, fmt.Errorf("entrymeta: open translations: %w", err)
		}
		defer f.Close()
		if err := catalog.Load(f); err != nil {
			return nil, err
		}
	}
	return templatetags.New(templatetags.Config{
		DateFormat:    cfg.DateFormat,
		Location:      loc,
		TeamAuthorURL: cfg.TeamAuthorURL,
		EditPath:      "/admin/post/",
	}, templatetags.WithIcons(set), templatetags.WithLocalizer(catalog)), nil
}

// Init opens the store and builds the renderer, cache and views without
// starting the server. Start calls it; tools and tests can call it alone.
func (a *App) Init() error {
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("entrymeta: init store: %w", err)
		}
		a.Store = store
	}
	if a.Renderer == nil {
		r, err := NewRenderer(a.Config)
		if err != nil {
			return err
		}
		a.Renderer = r
	}
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.loginLimiter = NewAttemptLimiter(5, time.Minute)
	a.unlockLimiter = NewAttemptLimiter(10, time.Minute)
	a.fillViews()
	return nil
}

func (a *App) fillViews() {
	d := views.New(a.Config.site(), a.Renderer)
	v := &a.Views
	if v.Listing == nil {
		v.Listing = d.Listing
	}
	if v.Single == nil {
		v.Single = d.Single
	}
	if v.Page == nil {
		v.Page = d.Page
	}
	if v.AdminLogin == nil {
		v.AdminLogin = d.AdminLogin
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = d.AdminDashboard
	}
	if v.AdminEdit == nil {
		v.AdminEdit = d.AdminEdit
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
}

// Handler initializes the app and returns the configured Echo instance
// without listening.
func (a *App) Handler() (*echo.Echo, error) {
	if a.Config.AdminPassword == "" {
		return nil, fmt.Errorf("entrymeta: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return nil, fmt.Errorf("entrymeta: SessionSecret is required")
	}
	if err := a.Init(); err != nil {
		return nil, err
	}
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a.Echo, nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	e, err := a.Handler()
	if err != nil {
		return err
	}
	go a.sweepLimiters(time.Minute)
	e.Logger.Infof("entrymeta: serving %s on %s", a.Config.Name, a.Config.Addr)
	if err := e.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) sweepLimiters(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		a.loginLimiter.Sweep()
		a.unlockLimiter.Sweep()
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/embedded/sprite.svg", echo.WrapHandler(http.StripPrefix("/embedded/", http.FileServer(http.FS(embeddedFS)))))

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleIndex)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blog/:slug/", a.handleSingle)
	e.GET("/blog/:slug/:page/", a.handleSingle)
	e.GET("/page/:slug/", a.handlePage)
	e.GET("/page/:slug/:page/", a.handlePage)
	e.GET("/category/:slug/", a.handleTermArchive(templatetags.TaxonomyCategory))
	e.GET("/tag/:slug/", a.handleTermArchive(templatetags.TaxonomyTag))
	e.GET("/location-types/:slug/", a.handleTermArchive(templatetags.TaxonomyLocationTypes))
	e.GET("/locations/", a.handleLocations)
	e.GET("/author/:slug/", a.handleAuthorArchive)
	e.POST("/unlock/:slug/", a.handleUnlock)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/post/:slug/", a.handleAdminPost)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/post/:slug/", a.handleAdminDelete)
	e.POST("/admin/post/:slug/thumbnail/", a.handleThumbnailUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("entrymeta: required environment variable %s is not set", key)
	}
	return v
}
