package templatetags

import (
	"strconv"
	"strings"
)

// PathEditLinker links editors to Path + slug + "/".
type PathEditLinker struct {
	Path string
}

// EditLink implements EditLinker.
func (e PathEditLinker) EditLink(q Query, text, before, after string) string {
	if !q.Viewer.CanEdit {
		return ""
	}
	href := strings.TrimSuffix(e.Path, "/") + "/" + q.Post.Slug + "/"
	return before + `<a class="post-edit-link" href="` + EscapeURL(href) + `">` + text + `</a>` + after
}

// PopupCommentsLinker links to the comment form when a post has no comments
// and to the comment list otherwise.
type PopupCommentsLinker struct {
	Localizer Localizer
	Domain    string
}

// CommentsPopupLink implements CommentsLinker.
func (c PopupCommentsLinker) CommentsPopupLink(q Query, zero string) string {
	p := q.Post
	if p.Comments.Count == 0 && !p.Comments.Open {
		return `<span>` + c.Localizer.Format(c.Domain, "", "Comments Off", EscapeHTML) + `</span>`
	}
	if q.PasswordRequired() {
		return EscapeHTML("Enter your password to view comments.")
	}
	if p.Comments.Count == 0 {
		return `<a href="` + EscapeURL(p.Permalink+"#respond") + `">` + zero + `</a>`
	}
	text := EscapeHTML(c.Localizer.Plural(c.Domain, "%d Comments", p.Comments.Count))
	return `<a href="` + EscapeURL(p.Permalink+"#comments") + `">` + text + `</a>`
}

// ImgThumbnailer renders a plain <img> tag for the requested size.
type ImgThumbnailer struct{}

// Thumbnail implements Thumbnailer. alt falls back to the image's own alt.
func (ImgThumbnailer) Thumbnail(img *Image, size, alt string) string {
	s, ok := img.Size(size)
	if !ok {
		return ""
	}
	if alt == "" {
		alt = img.Alt
	}
	var b strings.Builder
	b.WriteString(`<img`)
	if s.Width > 0 && s.Height > 0 {
		b.WriteString(` width="` + strconv.Itoa(s.Width) + `" height="` + strconv.Itoa(s.Height) + `"`)
	}
	b.WriteString(` src="` + EscapeURL(s.URL) + `"`)
	b.WriteString(` class="attachment-` + EscapeHTML(size) + ` size-` + EscapeHTML(size) + ` wp-post-image"`)
	b.WriteString(` alt="` + EscapeHTML(alt) + `" decoding="async" />`)
	return b.String()
}
