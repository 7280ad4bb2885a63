package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/entrymeta"
	"github.com/eringen/entrymeta/templatetags"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "render":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: entrymeta render <slug>")
			os.Exit(1)
		}
		err = runRender(os.Args[2])
	case "import":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: entrymeta import <posts.yaml>")
			os.Exit(1)
		}
		err = runImport(os.Args[2])
	case "version":
		fmt.Printf("entrymeta %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configFromEnv() entrymeta.SiteConfig {
	ttl, _ := time.ParseDuration(os.Getenv("POST_CACHE_TTL"))
	return entrymeta.SiteConfig{
		Name:             os.Getenv("SITE_NAME"),
		URL:              os.Getenv("SITE_URL"),
		Description:      os.Getenv("SITE_DESCRIPTION"),
		Addr:             os.Getenv("ADDR"),
		DatabasePath:     os.Getenv("DATABASE_PATH"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		CookieSecure:     os.Getenv("COOKIE_SECURE") == "true",
		PostCacheTTL:     ttl,
		FrontPage:        os.Getenv("FRONT_PAGE"),
		DateFormat:       os.Getenv("DATE_FORMAT"),
		Timezone:         os.Getenv("TIMEZONE"),
		Language:         os.Getenv("LANGUAGE"),
		TeamAuthorURL:    os.Getenv("TEAM_AUTHOR_URL"),
		IconsPath:        os.Getenv("ICONS_PATH"),
		TranslationsPath: os.Getenv("TRANSLATIONS_PATH"),
	}
}

func runServe() error {
	cfg := configFromEnv()
	cfg.AdminPassword = entrymeta.MustEnv("ADMIN_PASSWORD")
	cfg.SessionSecret = entrymeta.MustEnv("SESSION_SECRET")
	app := entrymeta.New(cfg, entrymeta.WithStaticDir(entrymeta.EnvOr("STATIC_DIR", "public")))
	defer app.Close()
	return app.Start()
}

// runRender prints the metadata fragments of one post as its single view
// shows them to an anonymous visitor.
func runRender(slug string) error {
	app := entrymeta.New(configFromEnv())
	if err := app.Init(); err != nil {
		return err
	}
	defer app.Close()

	p, err := app.Store.GetPostAny(slug)
	if errors.Is(err, entrymeta.ErrNotFound) {
		return fmt.Errorf("no post with slug %q", slug)
	}
	if err != nil {
		return err
	}
	view := templatetags.ViewSingle
	switch {
	case p.Type == templatetags.TypePage:
		view = templatetags.ViewPage
	case p.Attachment:
		view = templatetags.ViewAttachment
	}
	q := templatetags.Query{Post: p, View: view}
	r := app.Renderer
	ctx := context.Background()
	for _, part := range []struct{ name, html string }{
		{"date", r.DateStamp(q)},
		{"byline", r.Byline(q)},
		{"footer", r.EntryFooter(q)},
		{"thumbnail", r.Thumbnail(q)},
	} {
		fmt.Printf("%s:\n", part.name)
		if err := templatetags.Fragment(part.html).Render(ctx, os.Stdout); err != nil {
			return err
		}
		fmt.Print("\n\n")
	}
	fmt.Println("page:")
	page := app.Views.Single
	if view == templatetags.ViewPage {
		page = app.Views.Page
	}
	return page(q, "").Render(ctx, os.Stdout)
}

func runImport(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	app := entrymeta.New(configFromEnv())
	if err := app.Init(); err != nil {
		return err
	}
	defer app.Close()

	n, err := entrymeta.Import(app.Store, f)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d posts\n", n)
	return nil
}

func printUsage() {
	fmt.Println(`entrymeta - post metadata and thumbnails for a blog or location directory

Usage:
  entrymeta <command> [arguments]

Commands:
  serve           Start the web server
  render <slug>   Print the metadata fragments and page of one post
  import <file>   Load authors and posts from a YAML file
  version         Print the entrymeta version
  help            Show this help message

Configuration is read from the environment and an optional .env file:
  ADMIN_PASSWORD, SESSION_SECRET (required for serve), SITE_NAME, SITE_URL,
  DATABASE_PATH, TIMEZONE, DATE_FORMAT, LANGUAGE, FRONT_PAGE, ICONS_PATH,
  TRANSLATIONS_PATH`)
}
