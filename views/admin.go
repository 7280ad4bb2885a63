package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/entrymeta/templatetags"
)

func csrfField(token string) string {
	return `<input type="hidden" name="_csrf" value="` + templatetags.EscapeHTML(token) + `">`
}

// AdminLogin renders the admin password form.
func (v *Views) AdminLogin(showError bool, csrfToken string) templ.Component {
	return v.layout(PageMeta{Title: "Admin"}, func(w *writer) {
		if showError {
			w.put(`<p class="admin-error">Incorrect password.</p>`)
		}
		w.put(`<form class="admin-login" method="post" action="/admin/login/">`, csrfField(csrfToken),
			`<label>Password <input type="password" name="password" autofocus></label> <button type="submit">Log in</button></form>`)
	})
}

// AdminDashboard lists every post with its edit link.
func (v *Views) AdminDashboard(posts []templatetags.Post, message, csrfToken string) templ.Component {
	return v.layout(PageMeta{Title: "Dashboard"}, func(w *writer) {
		if message != "" {
			w.put(`<p class="admin-message">`, templatetags.EscapeHTML(message), `</p>`)
		}
		w.put(`<p><a href="/admin/post/new/">New post</a></p><table class="admin-posts"><thead><tr><th>Title</th><th>Type</th><th>Status</th><th>Modified</th><th></th></tr></thead><tbody>`)
		for _, p := range posts {
			status := "draft"
			if p.Published {
				status = "published"
			}
			w.put(`<tr><td><a href="`, templatetags.EscapeURL(p.Permalink), `">`, templatetags.EscapeHTML(p.Title), `</a></td><td>`, templatetags.EscapeHTML(p.Type),
				`</td><td>`, status, `</td><td>`, templatetags.EscapeHTML(p.ModifiedAt.Format("2006-01-02 15:04")),
				`</td><td><a href="/admin/post/`, templatetags.EscapeHTML(p.Slug), `/">Edit</a></td></tr>`)
		}
		w.put(`</tbody></table><form method="post" action="/admin/logout/">`, csrfField(csrfToken),
			`<button type="submit">Log out</button></form>`)
	})
}

func checkbox(name string, checked bool) string {
	s := `<input type="checkbox" name="` + name + `" value="1"`
	if checked {
		s += ` checked`
	}
	return s + `>`
}

// AdminEdit renders the post edit form and the featured image upload.
func (v *Views) AdminEdit(f PostForm, csrfToken string) templ.Component {
	return v.layout(PageMeta{Title: "Edit " + f.Title}, func(w *writer) {
		w.put(`<form class="admin-edit" method="post" action="/admin/save/">`, csrfField(csrfToken),
			`<input type="hidden" name="original_slug" value="`, templatetags.EscapeHTML(f.Slug), `">`,
			`<label>Title <input name="title" value="`, templatetags.EscapeHTML(f.Title), `"></label>`,
			`<label>Slug <input name="slug" value="`, templatetags.EscapeHTML(f.Slug), `"></label>`,
			`<label>Type <input name="type" value="`, templatetags.EscapeHTML(f.Type), `"></label>`,
			`<label>Author <input name="author" value="`, templatetags.EscapeHTML(f.Author), `"></label>`,
			`<label>Categories <input name="categories" value="`, templatetags.EscapeHTML(f.Categories), `"></label>`,
			`<label>Tags <input name="tags" value="`, templatetags.EscapeHTML(f.Tags), `"></label>`,
			`<label>Location types <input name="location_types" value="`, templatetags.EscapeHTML(f.LocationTypes), `"></label>`,
			`<label>Multiple authors <input name="multiple_authors" value="`, templatetags.EscapeHTML(f.MultipleAuthors), `"></label>`,
			`<label>Password <input type="password" name="password" placeholder="`)
		if f.PasswordProtected {
			w.put(`unchanged`)
		}
		w.put(`"></label>`,
			`<label>`, checkbox("clear_password", false), ` Remove password</label>`,
			`<label>`, checkbox("published", f.Published), ` Published</label>`,
			`<label>`, checkbox("comments_open", f.CommentsOpen), ` Comments open</label>`,
			`<label>Format `, formatSelect(f.ContentFormat), `</label>`,
			`<label>Content <textarea name="content" rows="16">`, templatetags.EscapeHTML(f.Content), `</textarea></label>`,
			`<button type="submit">Save</button></form>`)
		if f.Slug == "" {
			return
		}
		if f.ThumbnailURL != "" {
			w.put(`<p class="admin-thumbnail"><img src="`, templatetags.EscapeURL(f.ThumbnailURL), `" alt="" width="200"></p>`)
		}
		w.put(`<form class="admin-thumbnail-upload" method="post" enctype="multipart/form-data" action="/admin/post/`, templatetags.EscapeHTML(f.Slug), `/thumbnail/">`,
			csrfField(csrfToken), `<input type="file" name="image" accept="image/*"> <input name="alt" placeholder="Alt text"> <button type="submit">Set featured image</button></form>`)
	})
}

func formatSelect(current string) string {
	var b strings.Builder
	b.WriteString(`<select name="content_format">`)
	for _, f := range []struct{ value, label string }{
		{templatetags.FormatMarkdown, "Markdown"},
		{templatetags.FormatHTML, "HTML"},
	} {
		b.WriteString(`<option value="` + f.value + `"`)
		if f.value == current {
			b.WriteString(` selected`)
		}
		b.WriteString(`>` + f.label + `</option>`)
	}
	b.WriteString(`</select>`)
	return b.String()
}
