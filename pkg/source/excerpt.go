package source

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/newswatch/pkg/domain"
)

var stripPolicy = bluemonday.StrictPolicy()

// cleanExcerpt turns feed or post markup into a single line of plain text limited to maxRunes
func cleanExcerpt(s string, maxRunes int) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(stripPolicy.Sanitize(s))
	return domain.Shorten(strings.Join(strings.Fields(text), " "), maxRunes)
}
