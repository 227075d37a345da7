package markdown

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// Tags the web renderer is allowed to receive
var supportedTags = []string{
	"p", "br", "b", "i", "u", "s", "strong", "em",
	"ul", "ol", "li", "code", "pre", "a",
	"h1", "h2", "h3", "h4", "blockquote",
}

var tagPattern = regexp.MustCompile(`</?([a-zA-Z0-9]+)(?:\s[^>]*)?>`)
var tagNamePattern = regexp.MustCompile(`</?([a-zA-Z0-9]+)`)

// ToDisplayHTML converts generated markdown (career advice, suggestions)
// into HTML restricted to the renderer's tag set
func ToDisplayHTML(md string) string {
	if md == "" {
		return ""
	}

	html := string(blackfriday.Run([]byte(md), blackfriday.WithExtensions(blackfriday.CommonExtensions)))

	return cleanHTML(html)
}

// cleanHTML strips any tag outside the allowlist, keeping its content
func cleanHTML(html string) string {
	html = tagPattern.ReplaceAllStringFunc(html, func(match string) string {
		tagMatch := tagNamePattern.FindStringSubmatch(match)
		if len(tagMatch) > 1 {
			tagName := strings.ToLower(tagMatch[1])
			for _, supported := range supportedTags {
				if tagName == supported {
					return match
				}
			}
		}
		return ""
	})

	// Collapse leftover blank runs
	html = regexp.MustCompile(`\n{3,}`).ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}
