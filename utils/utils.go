package utils

import (
	"strings"

	"github.com/gosimple/slug"
)

const (
	slugLang      = "es"
	maxSlugLength = 200
)

// Slugify transliterates s (Spanish rules, so "&" reads "y") into a lowercase dashed slug.
func Slugify(s string) string {
	out := slug.MakeLang(strings.TrimSpace(s), slugLang)
	if len(out) > maxSlugLength {
		out = strings.TrimRight(out[:maxSlugLength], "-_")
	}
	return out
}
