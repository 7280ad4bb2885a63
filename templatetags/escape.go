package templatetags

import (
	"net/url"
	"path"
	"strings"

	"github.com/a-h/templ"
)

// EscapeHTML escapes s for text and attribute values.
func EscapeHTML(s string) string {
	return templ.EscapeString(s)
}

// EscapeURL rejects unsafe schemes and escapes the result for an attribute.
func EscapeURL(u string) string {
	return templ.EscapeString(string(templ.URL(u)))
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// AbsURL resolves a site-relative link such as a permalink or an upload
// path against base. Absolute links are returned as given.
func AbsURL(base, link string) string {
	if link == "" || strings.Contains(link, "://") {
		return link
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(link, "/")
}
