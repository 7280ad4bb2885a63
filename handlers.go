package entrymeta

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/entrymeta/templatetags"
)

// query builds the render context for p as seen by the current visitor.
func (a *App) query(c echo.Context, p templatetags.Post, view templatetags.View) templatetags.Query {
	return templatetags.Query{
		Post:             p,
		View:             view,
		PasswordAccepted: p.PasswordProtected && IsUnlocked(c, p.Slug),
		Viewer:           templatetags.Viewer{CanEdit: IsAdmin(c)},
	}
}

func (a *App) queries(c echo.Context, posts []templatetags.Post, term *templatetags.Term) []templatetags.Query {
	view := templatetags.ViewIndex
	if term != nil {
		view = templatetags.ViewArchive
	}
	out := make([]templatetags.Query, 0, len(posts))
	for _, p := range posts {
		q := a.query(c, p, view)
		q.QueriedTerm = term
		out = append(out, q)
	}
	return out
}

// pageNumber reads the optional :page segment of a split post. ok is false
// for anything but a page the body actually has.
func pageNumber(c echo.Context, p templatetags.Post) (int, bool) {
	raw := c.Param("page")
	if raw == "" {
		return 1, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > len(templatetags.Pages(p.Content)) {
		return 0, false
	}
	return n, true
}

// lookupPost returns a published post from the cache. Admins also see drafts.
func (a *App) lookupPost(c echo.Context, slug string) (templatetags.Post, error) {
	if IsAdmin(c) {
		return a.Store.GetPostAny(slug)
	}
	return a.Cache.GetPost(slug)
}

func (a *App) notFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
}

func (a *App) handleIndex(c echo.Context) error {
	if a.Config.FrontPage != "" {
		p, err := a.Cache.GetPost(a.Config.FrontPage)
		if err == nil {
			q := a.query(c, p, templatetags.ViewPage)
			q.FrontPage = true
			return Render(c, a.Views.Page(q, CsrfToken(c)))
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	posts, err := a.Cache.ListPosts(ListFilter{Type: templatetags.TypePost})
	if err != nil {
		return err
	}
	return Render(c, a.Views.Listing("", a.queries(c, posts, nil)))
}

func (a *App) handleSingle(c echo.Context) error {
	p, err := a.lookupPost(c, c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return a.notFound(c)
	}
	if err != nil {
		return err
	}
	if p.Type == templatetags.TypePage {
		return c.Redirect(http.StatusMovedPermanently, p.Permalink)
	}
	n, ok := pageNumber(c, p)
	if !ok {
		return a.notFound(c)
	}
	view := templatetags.ViewSingle
	if p.Attachment {
		view = templatetags.ViewAttachment
	}
	q := a.query(c, p, view)
	q.Page = n
	return Render(c, a.Views.Single(q, CsrfToken(c)))
}

func (a *App) handlePage(c echo.Context) error {
	p, err := a.lookupPost(c, c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return a.notFound(c)
	}
	if err != nil {
		return err
	}
	if p.Type != templatetags.TypePage {
		return c.Redirect(http.StatusMovedPermanently, p.Permalink)
	}
	n, ok := pageNumber(c, p)
	if !ok {
		return a.notFound(c)
	}
	q := a.query(c, p, templatetags.ViewPage)
	q.FrontPage = p.Slug == a.Config.FrontPage
	q.Page = n
	return Render(c, a.Views.Page(q, CsrfToken(c)))
}

// handleTermArchive lists the posts assigned a term of taxonomy.
func (a *App) handleTermArchive(taxonomy string) echo.HandlerFunc {
	return func(c echo.Context) error {
		term, err := a.Store.GetTerm(taxonomy, c.Param("slug"))
		if errors.Is(err, ErrNotFound) {
			return a.notFound(c)
		}
		if err != nil {
			return err
		}
		posts, err := a.Cache.ListPosts(ListFilter{Taxonomy: taxonomy, TermSlug: term.Slug})
		if err != nil {
			return err
		}
		return Render(c, a.Views.Listing(term.Name, a.queries(c, posts, &term)))
	}
}

// handleLocations lists every post with a location type. No term is queried,
// so each entry's icon comes from its own location type.
func (a *App) handleLocations(c echo.Context) error {
	posts, err := a.Cache.ListPosts(ListFilter{Taxonomy: templatetags.TaxonomyLocationTypes})
	if err != nil {
		return err
	}
	entries := a.queries(c, posts, nil)
	for i := range entries {
		entries[i].View = templatetags.ViewArchive
	}
	return Render(c, a.Views.Listing("Locations", entries))
}

func (a *App) handleAuthorArchive(c echo.Context) error {
	author, err := a.Store.GetAuthor(c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return a.notFound(c)
	}
	if err != nil {
		return err
	}
	posts, err := a.Cache.ListPosts(ListFilter{AuthorSlug: author.Slug})
	if err != nil {
		return err
	}
	entries := a.queries(c, posts, nil)
	for i := range entries {
		entries[i].View = templatetags.ViewArchive
	}
	return Render(c, a.Views.Listing(author.DisplayName, entries))
}

// handleUnlock checks a post password and remembers the post in the visitor
// session when it matches.
func (a *App) handleUnlock(c echo.Context) error {
	slug := c.Param("slug")
	p, err := a.lookupPost(c, slug)
	if errors.Is(err, ErrNotFound) {
		return a.notFound(c)
	}
	if err != nil {
		return err
	}
	ip := c.RealIP()
	if !a.unlockLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many password attempts. Try again later.")
	}
	ok, err := a.Store.CheckPassword(slug, c.FormValue("post_password"))
	if err != nil {
		return err
	}
	if !ok {
		a.unlockLimiter.Fail(ip)
		c.Logger().Warnf("unlock %s: wrong password from %s", slug, ip)
		return c.Redirect(http.StatusSeeOther, p.Permalink)
	}
	if err := unlockPost(c, slug); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, p.Permalink)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts(ListFilter{})
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(ListFilter{Type: templatetags.TypePost})
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.notFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
