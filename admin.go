package entrymeta

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/entrymeta/templatetags"
	"github.com/eringen/entrymeta/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

// handleAdminPost renders the edit form; the slug "new" gives an empty form.
func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	if slug == "new" {
		return Render(c, a.Views.AdminEdit(views.PostForm{
			Type:          templatetags.TypePost,
			ContentFormat: templatetags.FormatMarkdown,
			CommentsOpen:  true,
		}, CsrfToken(c)))
	}
	post, err := a.Store.GetPostAny(slug)
	if errors.Is(err, ErrNotFound) {
		return a.notFound(c)
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminEdit(postForm(post), CsrfToken(c)))
}

func postForm(p templatetags.Post) views.PostForm {
	f := views.PostForm{
		Slug:              p.Slug,
		Title:             p.Title,
		Type:              p.Type,
		Content:           p.Content,
		ContentFormat:     p.ContentFormat,
		Author:            p.Author.DisplayName,
		Published:         p.Published,
		CommentsOpen:      p.Comments.Open,
		PasswordProtected: p.PasswordProtected,
		Categories:        JoinNames(termNames(p, templatetags.TaxonomyCategory)),
		Tags:              JoinNames(termNames(p, templatetags.TaxonomyTag)),
		LocationTypes:     JoinNames(termNames(p, templatetags.TaxonomyLocationTypes)),
		MultipleAuthors:   strings.Join(p.MetaValues(templatetags.MetaMultipleAuthors), ", "),
	}
	if s, ok := p.Thumbnail.Size(templatetags.SizePostThumbnail); ok {
		f.ThumbnailURL = s.URL
	}
	return f
}

func termNames(p templatetags.Post, taxonomy string) []string {
	var names []string
	for _, t := range p.TermsOf(taxonomy) {
		names = append(names, t.Name)
	}
	return names
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Fail(ip)
	c.Logger().Warnf("admin login failed from %s", ip)
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func adminRedirect(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	slug := Slugify(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" || slug == "new" {
		return adminRedirect(c, "Slug is required. Add a title or slug.")
	}
	original := c.FormValue("original_slug")
	if original != slug {
		_, err := a.Store.GetPostAny(slug)
		if err == nil {
			return adminRedirect(c, "Slug "+slug+" is already taken.")
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	typ := strings.TrimSpace(c.FormValue("type"))
	if typ == "" {
		typ = templatetags.TypePost
	}

	format := c.FormValue("content_format")
	if format != templatetags.FormatMarkdown {
		format = templatetags.FormatHTML
	}

	in := PostInput{
		Slug:          slug,
		Title:         title,
		Type:          typ,
		Content:       c.FormValue("content"),
		ContentFormat: format,
		ModifiedAt:    time.Now(),
		CommentsOpen:  c.FormValue("comments_open") != "",
		Published:     c.FormValue("published") != "",
		Terms: map[string][]string{
			templatetags.TaxonomyCategory:      SplitList(c.FormValue("categories")),
			templatetags.TaxonomyTag:           SplitList(c.FormValue("tags")),
			templatetags.TaxonomyLocationTypes: SplitList(c.FormValue("location_types")),
		},
	}
	if authors := SplitList(c.FormValue("multiple_authors")); len(authors) > 0 {
		in.Meta = map[string][]string{templatetags.MetaMultipleAuthors: authors}
	}

	if name := strings.TrimSpace(c.FormValue("author")); name != "" {
		in.AuthorSlug = Slugify(name)
		if _, err := a.Store.SaveAuthor(in.AuthorSlug, name); err != nil {
			return err
		}
	}

	if original != "" {
		if err := a.carryOver(original, &in); err != nil {
			return err
		}
	}
	if pw := c.FormValue("password"); pw != "" {
		in.Password = pw
	} else if c.FormValue("clear_password") != "" {
		in.Password = ""
	}

	if original != "" && original != slug {
		if err := a.Store.RenamePost(original, slug); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	if _, err := a.Store.SavePost(in); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return adminRedirect(c, "saved")
}

// carryOver copies the fields the edit form does not send (publish date,
// password, comment count) from the stored post.
func (a *App) carryOver(slug string, in *PostInput) error {
	old, err := a.Store.GetPostAny(slug)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	in.PublishedAt = old.PublishedAt
	in.CommentCount = old.Comments.Count
	pw, err := a.Store.PostPassword(slug)
	if err != nil {
		return err
	}
	in.Password = pw
	return nil
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeletePost(c.Param("slug")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(posts, msg, CsrfToken(c)))
}
