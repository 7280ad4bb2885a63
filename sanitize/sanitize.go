// Package sanitize filters translated phrase markup down to an allow-list.
package sanitize

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Policy maps an allowed element name to its allowed attribute names.
type Policy map[string][]string

// SpanClass permits only <span class="..."> through.
var SpanClass = Policy{"span": {"class"}}

// Sanitizer applies a Policy to HTML fragments.
type Sanitizer struct {
	policy Policy
}

// New returns a Sanitizer for policy.
func New(policy Policy) *Sanitizer {
	return &Sanitizer{policy: policy}
}

// AllowSpanClass filters fragment with the receiver's policy. The name
// matches the only policy the renderer asks for.
func (s *Sanitizer) AllowSpanClass(fragment string) string {
	return s.Clean(fragment)
}

// Clean drops every element and attribute the policy does not list. Text is
// kept and re-escaped. Unclosed allowed elements are closed at the end.
func (s *Sanitizer) Clean(fragment string) string {
	var b strings.Builder
	var open []string
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return b.String()
			}
			for i := len(open) - 1; i >= 0; i-- {
				b.WriteString("</" + open[i] + ">")
			}
			return b.String()
		case html.TextToken:
			b.WriteString(html.EscapeString(string(z.Text())))
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			allowed, ok := s.policy[tok.Data]
			if !ok {
				continue
			}
			b.WriteString("<" + tok.Data)
			for _, attr := range tok.Attr {
				if attr.Namespace != "" || !contains(allowed, attr.Key) {
					continue
				}
				b.WriteString(" " + attr.Key + `="` + html.EscapeString(attr.Val) + `"`)
			}
			if tt == html.SelfClosingTagToken {
				b.WriteString(" />")
				continue
			}
			b.WriteString(">")
			open = append(open, tok.Data)
		case html.EndTagToken:
			tok := z.Token()
			if _, ok := s.policy[tok.Data]; !ok {
				continue
			}
			if i := lastIndex(open, tok.Data); i >= 0 {
				for j := len(open) - 1; j >= i; j-- {
					b.WriteString("</" + open[j] + ">")
				}
				open = open[:i]
			}
		}
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func lastIndex(list []string, v string) int {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == v {
			return i
		}
	}
	return -1
}
