package entrymeta

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/entrymeta/templatetags"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) sitemap(posts []templatetags.Post) sitemapURLSet {
	base := a.Config.URL
	urls := []sitemapURL{{Loc: templatetags.BuildURL(base)}}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     templatetags.AbsURL(base, p.Permalink),
			LastMod: p.ModifiedAt.UTC().Format(templatetags.W3CLayout),
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, posts []templatetags.Post) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(a.sitemap(posts))
}
