package source

import (
	"net/url"
	"regexp"
	"strings"
)

// TextCapture labels captures that carry no link.
const TextCapture = "Text/WhatsApp"

const maxTextTitleRunes = 100

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

type platform struct {
	label   string
	domains []string
}

// Checked in order; the first matching platform wins.
var platforms = []platform{
	{label: "Facebook", domains: []string{"facebook.com", "fb.com"}},
	{label: "LinkedIn", domains: []string{"linkedin.com"}},
	{label: "Medium", domains: []string{"medium.com"}},
	{label: "Twitter/X", domains: []string{"twitter.com", "x.com"}},
	{label: "YouTube", domains: []string{"youtube.com", "youtu.be"}},
	{label: "Reddit", domains: []string{"reddit.com"}},
	{label: "Instagram", domains: []string{"instagram.com"}},
	{label: "TikTok", domains: []string{"tiktok.com"}},
	{label: "GitHub", domains: []string{"github.com"}},
	{label: "Stack Overflow", domains: []string{"stackoverflow.com"}},
}

// ExtractURL returns the first http(s) link found in text.
func ExtractURL(text string) (string, bool) {
	match := urlPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}

// DetectSource maps a link to a platform label, falling back to the bare host
// name. Empty or unparsable input is treated as a plain text capture.
func DetectSource(rawURL string) string {
	if strings.TrimSpace(rawURL) == "" {
		return TextCapture
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return TextCapture
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return TextCapture
	}

	for _, p := range platforms {
		for _, domain := range p.domains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return p.label
			}
		}
	}

	return strings.TrimPrefix(host, "www.")
}

// TextTitle derives a title for a capture without a link: the first 100
// characters of the text.
func TextTitle(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > maxTextTitleRunes {
		runes = runes[:maxTextTitleRunes]
	}
	return string(runes)
}
