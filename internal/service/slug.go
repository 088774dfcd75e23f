package service

import (
	"strings"
)

// Slugify derives a URL-safe identifier from a title. The transform is
// deterministic: lowercase, ASCII letters and digits kept, every other run of
// characters collapsed into a single hyphen. The slug is computed once at
// question creation and never regenerated on later edits.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
