package metadata

import (
	"net/url"
	"regexp"
	"strings"
)

const untitled = "Untitled"

var trailingExtension = regexp.MustCompile(`\.[^/.]+$`)

// FallbackTitle derives a readable title from a URL: the last path segment
// (or the host when the path is empty) with dashes and underscores turned into
// spaces and any file extension dropped.
func FallbackTitle(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		if title := strings.TrimSpace(rawURL); title != "" {
			return title
		}
		return untitled
	}

	segment := parsed.Hostname()
	parts := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(parts) > 0 {
		segment = parts[len(parts)-1]
	}

	title := strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	title = strings.TrimSpace(trailingExtension.ReplaceAllString(title, ""))
	if title == "" {
		return untitled
	}

	return title
}
