package ai

import (
	"fmt"
	"strings"

	"github.com/careerhub-go/internal/models"
)

// templateTheme holds the per-style presentation knobs for the static
// resume templates
type templateTheme struct {
	font       string
	accent     string
	background string
	headerRule string
	badges     bool
}

// RenderTemplate renders a deterministic, network-free resume for the
// given style. It is the fallback when generated HTML fails the quality
// check. Unknown styles render as standard.
func RenderTemplate(style string, profile *models.Profile) string {
	var theme templateTheme

	switch style {
	case StyleProfessional:
		theme = templateTheme{
			font:       "'Helvetica Neue', Arial, sans-serif",
			accent:     "#1f3a5f",
			background: "#f4f6f8",
			headerRule: "3px solid #1f3a5f",
		}
	case StyleAcademic:
		theme = templateTheme{
			font:       "Georgia, 'Times New Roman', serif",
			accent:     "#4a2c1a",
			background: "#fffdf7",
			headerRule: "1px solid #4a2c1a",
		}
	case StyleModern:
		theme = templateTheme{
			font:       "'Segoe UI', Roboto, sans-serif",
			accent:     "#0d9488",
			background: "#ffffff",
			headerRule: "4px solid #0d9488",
			badges:     true,
		}
	default: // standard
		theme = templateTheme{
			font:       "Arial, sans-serif",
			accent:     "#333333",
			background: "#ffffff",
			headerRule: "2px solid #333333",
		}
	}

	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<style>\n")
	fmt.Fprintf(&b, "body { font-family: %s; background: %s; color: #222; max-width: 800px; margin: 0 auto; padding: 32px; }\n",
		theme.font, theme.background)
	fmt.Fprintf(&b, "h1 { color: %s; border-bottom: %s; padding-bottom: 8px; }\n", theme.accent, theme.headerRule)
	fmt.Fprintf(&b, "h2 { color: %s; margin-top: 24px; }\n", theme.accent)
	b.WriteString(".meta { color: #555; margin-bottom: 16px; }\n")
	if theme.badges {
		fmt.Fprintf(&b, ".badge { display: inline-block; background: %s; color: #fff; border-radius: 12px; padding: 2px 10px; margin: 2px; font-size: 13px; }\n",
			theme.accent)
	}
	b.WriteString("</style>\n</head>\n<body>\n")

	fmt.Fprintf(&b, "<h1>%s</h1>\n", orNotProvided(profile.DisplayName))
	fmt.Fprintf(&b, "<p class=\"meta\">%s · %s · %s · %s</p>\n",
		orNotProvided(profile.Headline), orNotProvided(profile.Email),
		orNotProvided(profile.Phone), orNotProvided(profile.Location))

	b.WriteString("<h2>Summary</h2>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", orNotProvided(profile.Summary))

	b.WriteString("<h2>Skills</h2>\n")
	if len(profile.Skills) == 0 {
		b.WriteString("<p>Not provided</p>\n")
	} else if theme.badges {
		b.WriteString("<p>")
		for _, skill := range profile.Skills {
			fmt.Fprintf(&b, "<span class=\"badge\">%s</span>", skill)
		}
		b.WriteString("</p>\n")
	} else {
		fmt.Fprintf(&b, "<p>%s</p>\n", strings.Join(profile.Skills, ", "))
	}

	b.WriteString("<h2>Experience</h2>\n")
	if len(profile.Experience) == 0 {
		b.WriteString("<p>Not provided</p>\n")
	}
	for _, exp := range profile.Experience {
		fmt.Fprintf(&b, "<h3>%s — %s</h3>\n", orNotProvided(exp.Title), orNotProvided(exp.Company))
		fmt.Fprintf(&b, "<p class=\"meta\">%s</p>\n", orNotProvided(exp.Period))
		fmt.Fprintf(&b, "<p>%s</p>\n", orNotProvided(exp.Description))
	}

	b.WriteString("<h2>Education</h2>\n")
	if len(profile.Education) == 0 {
		b.WriteString("<p>Not provided</p>\n")
	}
	for _, edu := range profile.Education {
		fmt.Fprintf(&b, "<p><strong>%s</strong> — %s, %s (%s)</p>\n",
			orNotProvided(edu.School), orNotProvided(edu.Degree),
			orNotProvided(edu.Field), orNotProvided(edu.Period))
	}

	if len(profile.Links) > 0 {
		b.WriteString("<h2>Links</h2>\n<p>")
		b.WriteString(strings.Join(profile.Links, " · "))
		b.WriteString("</p>\n")
	}

	b.WriteString("</body>\n</html>\n")

	return b.String()
}
