package templatetags

import "strings"

const (
	leaveCommentKey = `Leave a Comment<span class="screen-reader-text"> on %s</span>`
	editKey         = `Edit <span class="screen-reader-text">%s</span>`
)

// EntryFooter renders the category list, tag list, comments link and edit
// link of a post. Each part is skipped when it has nothing to show.
func (r *Renderer) EntryFooter(q Query) string {
	p := q.Post
	var b strings.Builder

	// Pages carry no category or tag text.
	if p.Type == TypePost {
		sep := r.phrase("", ", ")
		if list := termLinks(p.TermsOf(TaxonomyCategory), sep, "category tag"); list != "" {
			b.WriteString(`<span class="cat-links">` + r.phrase("", "Posted in %s", list) + `</span>`)
		}
		sep = r.phrase("list item separator", ", ")
		if list := termLinks(p.TermsOf(TaxonomyTag), sep, "tag"); list != "" {
			b.WriteString(`<span class="tags-links">` + r.phrase("", "Tagged %s", list) + `</span>`)
		}
	}

	if r.showCommentsLink(q) {
		zero := r.markupPhrase(leaveCommentKey, EscapeHTML(p.Title))
		b.WriteString(`<span class="comments-link">` + r.comments.CommentsPopupLink(q, zero) + `</span>`)
	}

	edit := r.markupPhrase(editKey, EscapeHTML(p.Title))
	b.WriteString(r.edit.EditLink(q, edit, `<span class="edit-link">`, `</span>`))
	return b.String()
}

func (r *Renderer) showCommentsLink(q Query) bool {
	if q.View.IsSingle() || q.PasswordRequired() {
		return false
	}
	return q.Post.Comments.Open || q.Post.Comments.Count > 0
}

func termLinks(terms []Term, sep, rel string) string {
	if len(terms) == 0 {
		return ""
	}
	links := make([]string, 0, len(terms))
	for _, t := range terms {
		links = append(links, `<a href="`+EscapeURL(t.URL)+`" rel="`+rel+`">`+EscapeHTML(t.Name)+`</a>`)
	}
	return strings.Join(links, sep)
}
