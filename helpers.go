package entrymeta

import "strings"

// Slugify converts a title or term name to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitList splits a comma-separated form value into trimmed, non-empty items.
func SplitList(s string) []string {
	return FilterEmpty(strings.Split(s, ","))
}

// JoinNames joins term names with ", " for form fields.
func JoinNames(names []string) string {
	return strings.Join(names, ", ")
}
