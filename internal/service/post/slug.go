package post

import (
	"strings"

	"github.com/lithammer/shortuuid/v4"
)

const (
	maxSlugBase    = 60
	slugSuffixLen  = 8
	slugAlphabet   = "23456789abcdefghijkmnopqrstuvwxyz"
	fallbackPrefix = "post"
)

// Slugify lowercases title and keeps ASCII letters and digits, joining runs
// of anything else with a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
		if b.Len() >= maxSlugBase {
			break
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugBase {
		slug = strings.TrimRight(slug[:maxSlugBase], "-")
	}
	if slug == "" {
		return fallbackPrefix
	}
	return slug
}

// NewSlug appends a short random suffix so equal titles never collide.
func NewSlug(title string) string {
	return Slugify(title) + "-" + shortuuid.NewWithAlphabet(slugAlphabet)[:slugSuffixLen]
}
