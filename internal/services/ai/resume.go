package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/careerhub-go/internal/models"
	"github.com/sirupsen/logrus"
)

// Resume styles
const (
	StyleStandard     = "standard"
	StyleProfessional = "professional"
	StyleAcademic     = "academic"
	StyleModern       = "modern"
)

const maxResumeBackoff = 8 * time.Second

// NormalizeStyle maps unrecognized styles to modern
func NormalizeStyle(style string) string {
	switch style {
	case StyleStandard, StyleProfessional, StyleAcademic, StyleModern:
		return style
	default:
		return StyleModern
	}
}

// GenerateResume produces resume HTML for a profile. Unknown models are
// substituted with the head of the chain. On a 429 or 404 the next model
// in the chain is tried after a bounded exponential backoff; attempts are
// strictly sequential and each model is tried at most once, so the loop
// terminates within the chain length.
func (c *Client) GenerateResume(ctx context.Context, profile *models.Profile, model, style string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &Error{Kind: KindConfig, Message: "generation API key is not configured"}
	}

	model = c.chain.Normalize(model)
	style = NormalizeStyle(style)
	prompt := buildResumePrompt(profile, style)

	for {
		raw, err := c.generateContent(ctx, model, prompt, true)
		if err == nil {
			c.state.RecordSuccess()
			return StripFences(raw), nil
		}

		status := statusOf(err)
		next, hasNext := c.chain.Next(model)
		if hasNext && (status == 429 || status == 404) {
			failures := c.state.RecordFallback(c.now())
			delay := backoffDelay(failures)

			c.logger.WithFields(logrus.Fields{
				"model":    model,
				"next":     next,
				"status":   status,
				"failures": failures,
				"backoff":  delay,
			}).Warn("Resume generation failed, falling back")

			if c.OnFallback != nil {
				c.OnFallback(model, next)
			}

			select {
			case <-ctx.Done():
				return "", &Error{Kind: KindGeneric, Model: model, Message: ctx.Err().Error()}
			case <-c.after(delay):
			}

			model = next
			continue
		}

		switch status {
		case 429:
			return "", &Error{Kind: KindRateLimited, Status: 429, Model: model, Message: err.Error()}
		case 404:
			return "", &Error{Kind: KindModelUnavailable, Status: 404, Model: model, Message: err.Error()}
		default:
			return "", &Error{Kind: KindGeneric, Status: status, Model: model, Message: err.Error()}
		}
	}
}

// backoffDelay computes min(1s * 2^n, 8s) for n consecutive failures
func backoffDelay(failures int) time.Duration {
	if failures > 3 {
		return maxResumeBackoff
	}
	delay := time.Second << uint(failures)
	if delay > maxResumeBackoff {
		return maxResumeBackoff
	}
	return delay
}

// GenerateResumeAnalysis scores resume content and suggests improvements.
// A malformed model response degrades to a fixed fallback analysis rather
// than an error; only transport failures are surfaced. There is
// deliberately no fallback chain here.
func (c *Client) GenerateResumeAnalysis(ctx context.Context, resumeContent, userContext string) (*models.ResumeAnalysis, error) {
	if c.cfg.APIKey == "" {
		return nil, &Error{Kind: KindConfig, Message: "generation API key is not configured"}
	}

	prompt := buildAnalysisPrompt(resumeContent, userContext)

	raw, err := c.generateContent(ctx, c.chain.Head(), prompt, true)
	if err != nil {
		c.logger.WithError(err).Error("Resume analysis request failed")
		return nil, &Error{Kind: KindGeneric, Status: statusOf(err), Message: "analysis service unavailable, try again later"}
	}

	var analysis models.ResumeAnalysis
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		c.logger.WithError(err).Warn("Analysis response was not valid JSON, using fallback")
		return fallbackAnalysis(resumeContent), nil
	}

	return &analysis, nil
}

// fallbackAnalysis is returned whenever the model output cannot be parsed
func fallbackAnalysis(resumeContent string) *models.ResumeAnalysis {
	return &models.ResumeAnalysis{
		Score: 70,
		Strengths: []string{
			"Relevant professional experience is present",
			"Core skills are listed",
			"Overall structure is readable",
		},
		Improvements: []string{
			"Quantify achievements with concrete numbers",
			"Tailor the summary to the target role",
			"Add keywords from the job descriptions you are targeting",
		},
		DetailedFeedback: "The resume covers the essentials but would benefit from " +
			"measurable results and a sharper focus on the target role. Lead each " +
			"experience entry with an outcome rather than a duty.",
		EnhancedContent: resumeContent,
	}
}

func buildResumePrompt(profile *models.Profile, style string) string {
	var b strings.Builder

	b.WriteString("Generate a complete, self-contained HTML resume document with inline CSS.\n")
	b.WriteString("Layout: ")
	b.WriteString(styleDescriptors[style])
	b.WriteString("\n\nCandidate details (use \"Not provided\" entries as-is, do not invent data):\n")

	fmt.Fprintf(&b, "Name: %s\n", orNotProvided(profile.DisplayName))
	fmt.Fprintf(&b, "Headline: %s\n", orNotProvided(profile.Headline))
	fmt.Fprintf(&b, "Summary: %s\n", orNotProvided(profile.Summary))
	fmt.Fprintf(&b, "Email: %s\n", orNotProvided(profile.Email))
	fmt.Fprintf(&b, "Phone: %s\n", orNotProvided(profile.Phone))
	fmt.Fprintf(&b, "Location: %s\n", orNotProvided(profile.Location))
	fmt.Fprintf(&b, "Skills: %s\n", orNotProvided(strings.Join(profile.Skills, ", ")))

	b.WriteString("Experience:\n")
	if len(profile.Experience) == 0 {
		b.WriteString("  Not provided\n")
	}
	for _, exp := range profile.Experience {
		fmt.Fprintf(&b, "  - %s at %s (%s): %s\n",
			orNotProvided(exp.Title), orNotProvided(exp.Company),
			orNotProvided(exp.Period), orNotProvided(exp.Description))
	}

	b.WriteString("Education:\n")
	if len(profile.Education) == 0 {
		b.WriteString("  Not provided\n")
	}
	for _, edu := range profile.Education {
		fmt.Fprintf(&b, "  - %s, %s in %s (%s)\n",
			orNotProvided(edu.School), orNotProvided(edu.Degree),
			orNotProvided(edu.Field), orNotProvided(edu.Period))
	}

	if len(profile.Links) > 0 {
		fmt.Fprintf(&b, "Links: %s\n", strings.Join(profile.Links, ", "))
	}

	b.WriteString("\nReturn only the HTML document, no markdown fences and no commentary.")

	return b.String()
}

var styleDescriptors = map[string]string{
	StyleStandard:     "a clean single-column layout with clear section headings and generous whitespace",
	StyleProfessional: "a polished two-column layout with a dark sidebar for contact details and skills",
	StyleAcademic:     "a formal serif layout that leads with education and lists experience chronologically",
	StyleModern:       "a contemporary layout with an accent color, bold typography and skill badges",
}

func buildAnalysisPrompt(resumeContent, userContext string) string {
	var b strings.Builder

	b.WriteString("Analyze the following resume and respond with a strict JSON object, ")
	b.WriteString("no markdown fences, with exactly these fields:\n")
	b.WriteString(`{"score": <0-100>, "strengths": [..], "improvements": [..], `)
	b.WriteString(`"detailedFeedback": "...", "enhancedContent": "..."}` + "\n\n")

	if userContext != "" {
		fmt.Fprintf(&b, "Candidate context: %s\n\n", userContext)
	}

	b.WriteString("Resume:\n")
	b.WriteString(resumeContent)

	return b.String()
}

func orNotProvided(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Not provided"
	}
	return value
}
