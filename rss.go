package entrymeta

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/entrymeta/templatetags"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	DC      string     `xml:"xmlns:dc,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title      string   `xml:"title"`
	Link       string   `xml:"link"`
	Creator    string   `xml:"dc:creator,omitempty"`
	PubDate    string   `xml:"pubDate"`
	Categories []string `xml:"category"`
	GUID       string   `xml:"guid"`
}

// feed builds the RSS document. Items carry no content, so protected posts
// leak nothing; dc:creator uses the same author resolution as the byline.
func (a *App) feed(posts []templatetags.Post) rssXML {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := templatetags.AbsURL(base, p.Permalink)
		name, _ := a.Renderer.ResolveAuthor(p)
		var cats []string
		for _, t := range p.TermsOf(templatetags.TaxonomyCategory) {
			cats = append(cats, t.Name)
		}
		items = append(items, rssItem{
			Title:      p.Title,
			Link:       link,
			Creator:    name,
			PubDate:    p.PublishedAt.UTC().Format(time.RFC1123Z),
			Categories: cats,
			GUID:       link,
		})
	}
	return rssXML{
		Version: "2.0",
		DC:      "http://purl.org/dc/elements/1.1/",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, posts []templatetags.Post) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(a.feed(posts))
}
