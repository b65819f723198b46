package domain

import (
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// GenerateSlug derives a URL-safe slug from a title: lowercase, trimmed,
// non-word characters removed, whitespace/underscore/hyphen runs collapsed
// into a single hyphen, no leading or trailing hyphen.
//
//	GenerateSlug("My Cool, Project!!") // "my-cool-project"
//
// The result is empty when the title holds no ASCII letter or digit.
func GenerateSlug(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
