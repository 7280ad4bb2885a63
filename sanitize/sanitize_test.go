package sanitize

import "testing"

func TestCleanSpanClass(t *testing.T) {
	s := New(SpanClass)
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Leave a Comment", "Leave a Comment"},
		{"span class kept", `Edit <span class="screen-reader-text">%s</span>`, `Edit <span class="screen-reader-text">%s</span>`},
		{"other attrs dropped", `<span class="a" onclick="x()" style="color:red">t</span>`, `<span class="a">t</span>`},
		{"other tags dropped", `<b>bold</b> <script>alert(1)</script>`, `bold alert(1)`},
		{"link dropped", `<a href="javascript:x">go</a>`, `go`},
		{"text re-escaped", `a &amp; b &lt;c&gt;`, `a &amp; b &lt;c&gt;`},
		{"unclosed span closed", `<span class="x">open`, `<span class="x">open</span>`},
		{"stray close dropped", `text</span>`, `text`},
		{"quotes in class escaped", `<span class='a"b'>t</span>`, `<span class="a&#34;b">t</span>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.AllowSpanClass(tt.input); got != tt.want {
				t.Errorf("AllowSpanClass(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanLeavesSafeMarkupUntouched(t *testing.T) {
	s := New(SpanClass)
	in := "Leave a Comment<span class=\"screen-reader-text\"> on </span>"
	if got := s.Clean(in); got != in {
		t.Errorf("Clean(%q) = %q", in, got)
	}
}
