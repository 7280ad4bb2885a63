package markdown

import (
	"strings"
	"testing"
)

func TestInline(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic* and _this_", "<em>italic</em> and <em>this</em>"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"`a *b* c`", "<code>a *b* c</code>"},
		{"a < b & c", "a &lt; b &amp; c"},
		{"[Library](/blog/city-library/)", `<a href="/blog/city-library/">Library</a>`},
		{"[Map](https://example.com/map)^", `<a href="https://example.com/map" target="_blank" rel="noopener noreferrer">Map</a>`},
		{"[x](javascript:void)", "x"},
	}
	for _, tt := range tests {
		if got := Inline(tt.input, new(int)); got != tt.want {
			t.Errorf("Inline(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestInlineLinksKeepUnderscoresInURL(t *testing.T) {
	got := Inline("[doc](/public/uploads/my_big_file.pdf)", new(int))
	want := `<a href="/public/uploads/my_big_file.pdf">doc</a>`
	if got != want {
		t.Errorf("Inline = %q, want %q", got, want)
	}
}

func TestInlineImages(t *testing.T) {
	n := 0
	first := Inline("![Park gate](/public/uploads/gate.jpg){800|400}", &n)
	want := `<img width="800" height="400" src="/public/uploads/gate.jpg" alt="Park gate" fetchpriority="high" decoding="async"/>`
	if first != want {
		t.Errorf("first image = %q, want %q", first, want)
	}
	second := Inline("![](/b.jpg)", &n)
	if !strings.Contains(second, `loading="lazy"`) || strings.Contains(second, "width=") {
		t.Errorf("second image = %q", second)
	}
	if n != 2 {
		t.Errorf("image count = %d, want 2", n)
	}
	if got := Inline("![x](data:text/html,boom)", &n); got != "x" {
		t.Errorf("unsafe image = %q", got)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"paragraphs", "one\ntwo\n\nthree", "<p>one\ntwo</p><p>three</p>"},
		{"headings", "# Title\n### Small", "<h1>Title</h1><h3>Small</h3>"},
		{"hashtag is text", "#go", "<p>#go</p>"},
		{"list", "- a\n- b\n\nafter", "<ul><li>a</li><li>b</li></ul><p>after</p>"},
		{"ordered", "1. a\n2. b", "<ol><li>a</li><li>b</li></ol>"},
		{"list then ordered", "- a\n1. b", "<ul><li>a</li></ul><ol><li>b</li></ol>"},
		{"quote", "> a\n> b", "<blockquote>a b</blockquote>"},
		{"rule", "a\n---\nb", "<p>a</p><hr/><p>b</p>"},
		{"raw html escaped", "<script>x</script>", "<p>&lt;script&gt;x&lt;/script&gt;</p>"},
		{"code", "```go\nif a < b {}\n```", `<pre class="wp-block-code"><code class="language-go">if a &lt; b {}` + "\n</code></pre>"},
		{"unterminated code", "```\nx", `<pre class="wp-block-code"><code>x` + "\n</code></pre>"},
		{"table", "| Name | Hours |\n|---|:-:|\n| Library | 9-5 |",
			"<table><thead><tr><th>Name</th><th>Hours</th></tr></thead><tbody><tr><td>Library</td><td>9-5</td></tr></tbody></table>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.input); got != tt.want {
				t.Errorf("Render(%q) =\n%q\nwant\n%q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderFirstImageOnly(t *testing.T) {
	got := Render("![a](/a.jpg)\n\n![b](/b.jpg)")
	if strings.Count(got, "fetchpriority") != 1 {
		t.Errorf("want one high priority image: %s", got)
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/blog/x/", "/blog/x/"},
		{"#respond", "#respond"},
		{"https://example.com/?a=1&amp;b=2", "https://example.com/?a=1&amp;b=2"},
		{"mailto:a@example.com", "mailto:a@example.com"},
		{"javascript:alert(1)", ""},
		{"example.com", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.want {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
