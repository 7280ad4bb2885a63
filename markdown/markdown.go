// Package markdown renders the markdown subset used for post bodies into
// HTML.
package markdown

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	reStrong     = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	reEmphasis   = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	reCode       = regexp.MustCompile("`([^`]+)`")
	reLink       = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrdered    = regexp.MustCompile(`^\d+\.\s`)
	reHeading    = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	reImage      = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)(?:\{(\d+)\|(\d+)\})?`)
	codeSentinel = "\x00C"
)

// block is the container the renderer is currently inside.
type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockTable
)

var closeTags = map[block]string{
	blockPara:    "</p>",
	blockList:    "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</blockquote>",
}

type renderer struct {
	b      strings.Builder
	open   block
	tbody  bool
	images int
}

// enter closes the current block unless it is already want.
func (r *renderer) enter(want block) bool {
	if r.open == want {
		return false
	}
	r.close()
	r.open = want
	return true
}

func (r *renderer) close() {
	switch r.open {
	case blockNone:
		return
	case blockTable:
		if r.tbody {
			r.b.WriteString("</tbody>")
		}
		r.b.WriteString("</table>")
		r.tbody = false
	default:
		r.b.WriteString(closeTags[r.open])
	}
	r.open = blockNone
}

func (r *renderer) inline(s string) string {
	return Inline(s, &r.images)
}

// Render returns the HTML for md. Raw HTML in md is escaped.
func Render(md string) string {
	r := &renderer{}
	var code *strings.Builder
	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")

		if strings.HasPrefix(line, "```") {
			if code != nil {
				r.b.WriteString(code.String())
				r.b.WriteString("</code></pre>")
				code = nil
				continue
			}
			r.close()
			code = &strings.Builder{}
			if lang := strings.TrimSpace(line[3:]); lang != "" {
				r.b.WriteString(`<pre class="wp-block-code"><code class="language-` + html.EscapeString(lang) + `">`)
			} else {
				r.b.WriteString(`<pre class="wp-block-code"><code>`)
			}
			continue
		}
		if code != nil {
			code.WriteString(html.EscapeString(line))
			code.WriteString("\n")
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			r.close()
			continue
		}

		if m := reHeading.FindStringSubmatch(line); m != nil {
			r.close()
			n := strconv.Itoa(len(m[1]))
			r.b.WriteString("<h" + n + ">" + r.inline(strings.TrimSpace(m[2])) + "</h" + n + ">")
			continue
		}

		switch {
		case strings.HasPrefix(line, "---"):
			r.close()
			r.b.WriteString("<hr/>")
		case strings.HasPrefix(line, "|"):
			r.tableRow(line)
		case strings.HasPrefix(line, "- "):
			if r.enter(blockList) {
				r.b.WriteString("<ul>")
			}
			r.b.WriteString("<li>" + r.inline(strings.TrimSpace(line[2:])) + "</li>")
		case reOrdered.MatchString(line):
			if r.enter(blockOrdered) {
				r.b.WriteString("<ol>")
			}
			item := reOrdered.ReplaceAllString(line, "")
			r.b.WriteString("<li>" + r.inline(strings.TrimSpace(item)) + "</li>")
		case strings.HasPrefix(line, "> "):
			if r.enter(blockQuote) {
				r.b.WriteString("<blockquote>")
			} else {
				r.b.WriteString(" ")
			}
			r.b.WriteString(r.inline(strings.TrimSpace(line[2:])))
		default:
			if r.enter(blockPara) {
				r.b.WriteString("<p>")
			} else {
				r.b.WriteString("\n")
			}
			r.b.WriteString(r.inline(trimmed))
		}
	}
	if code != nil {
		r.b.WriteString(code.String())
		r.b.WriteString("</code></pre>")
	}
	r.close()
	return r.b.String()
}

// tableRow writes one pipe table line. The first row of a table is its
// header and a |---|---| line is dropped.
func (r *renderer) tableRow(line string) {
	cells := splitCells(line)
	if r.enter(blockTable) {
		r.b.WriteString("<table><thead><tr>")
		for _, c := range cells {
			r.b.WriteString("<th>" + r.inline(c) + "</th>")
		}
		r.b.WriteString("</tr></thead>")
		return
	}
	if !r.tbody {
		r.b.WriteString("<tbody>")
		r.tbody = true
	}
	if isDivider(cells) {
		return
	}
	r.b.WriteString("<tr>")
	for _, c := range cells {
		r.b.WriteString("<td>" + r.inline(c) + "</td>")
	}
	r.b.WriteString("</tr>")
}

func splitCells(line string) []string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(line), "|"), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func isDivider(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// outsideTags applies fn to the text between tags only, so formatting never
// reaches into attribute values.
func outsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for s != "" {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			b.WriteString(fn(s))
			break
		}
		b.WriteString(fn(s[:lt]))
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			b.WriteString(s[lt:])
			break
		}
		b.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return b.String()
}

// Inline escapes s and applies images, links, code spans, strong and
// emphasis. images counts rendered images across a document; the first one
// is fetched with high priority and later ones lazily.
func Inline(s string, images *int) string {
	out := html.EscapeString(s)

	var spans []string
	out = reCode.ReplaceAllStringFunc(out, func(m string) string {
		spans = append(spans, "<code>"+reCode.FindStringSubmatch(m)[1]+"</code>")
		return codeSentinel + strconv.Itoa(len(spans)-1) + "\x00"
	})

	out = reImage.ReplaceAllStringFunc(out, func(m string) string {
		g := reImage.FindStringSubmatch(m)
		src := SafeURL(g[2])
		if src == "" {
			return g[1]
		}
		*images++
		loading := `loading="lazy"`
		if *images == 1 {
			loading = `fetchpriority="high"`
		}
		size := ""
		if g[3] != "" && g[4] != "" {
			size = ` width="` + g[3] + `" height="` + g[4] + `"`
		}
		return `<img` + size + ` src="` + src + `" alt="` + g[1] + `" ` + loading + ` decoding="async"/>`
	})

	out = reLink.ReplaceAllStringFunc(out, func(m string) string {
		g := reLink.FindStringSubmatch(m)
		href := SafeURL(g[2])
		if href == "" {
			return g[1]
		}
		extra := ""
		if g[3] == "^" {
			extra = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + extra + `>` + g[1] + `</a>`
	})

	out = outsideTags(out, func(seg string) string {
		seg = reStrong.ReplaceAllStringFunc(seg, func(m string) string {
			g := reStrong.FindStringSubmatch(m)
			if g[1] != g[3] {
				return m
			}
			return "<strong>" + g[2] + "</strong>"
		})
		return reEmphasis.ReplaceAllString(seg, "<em>$1$2</em>")
	})

	for i, span := range spans {
		out = strings.Replace(out, codeSentinel+strconv.Itoa(i)+"\x00", span, 1)
	}
	return out
}

// SafeURL returns raw escaped for an attribute, or "" unless it is a
// relative path, a fragment, or an http, https, mailto or tel URL.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	u, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	}
	return ""
}
