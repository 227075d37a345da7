package ai

import (
	"regexp"
	"strings"
)

// Minimum length for generated resume HTML to pass the quality check
const minResumeHTMLLength = 300

var fencePattern = regexp.MustCompile("(?s)^```(?:html|json)?\\s*(.*?)\\s*```$")

// StripFences removes markdown code-fence artifacts wrapping model output
func StripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if match := fencePattern.FindStringSubmatch(trimmed); match != nil {
		return strings.TrimSpace(match[1])
	}
	// Handle a stray opening or closing fence left by truncated output
	trimmed = strings.TrimPrefix(trimmed, "```html")
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// ValidateResumeHTML runs the post-hoc quality check on generated resume
// HTML: the candidate's display name must appear, some styling must be
// present, and the document must not be trivially short. Callers
// substitute the static template when this fails.
func ValidateResumeHTML(html, displayName string) bool {
	if len(html) < minResumeHTMLLength {
		return false
	}
	if !strings.Contains(html, "<style") && !strings.Contains(html, "style=") {
		return false
	}
	if displayName != "" && !strings.Contains(html, displayName) {
		return false
	}
	return true
}
