package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/careerhub-go/internal/config"
	"github.com/sirupsen/logrus"
)

// Generation roles select the system instruction prefixed to the prompt
const (
	RoleCareerAdvisor   = "career-advisor"
	RoleResumeGenerator = "resume-generator"
	RoleDefault         = ""
)

var systemInstructions = map[string]string{
	RoleCareerAdvisor: "You are an experienced career advisor for a professional " +
		"networking platform. Give practical, specific guidance on skills, career " +
		"moves and positioning. Keep answers concise and actionable.",
	RoleResumeGenerator: "You are an expert resume writer. Produce clear, " +
		"achievement-oriented resume content tailored to the candidate's field.",
	RoleDefault: "",
}

// Client issues prompts to the generation endpoint with rate-limit
// tracking and model fallback
type Client struct {
	cfg        *config.AIConfig
	chain      ModelChain
	state      *RateLimitState
	httpClient *http.Client
	logger     *logrus.Logger

	// OnFallback is called when the resume chain substitutes a model
	OnFallback func(from, to string)

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewClient creates a generation client around the given shared state
func NewClient(cfg *config.AIConfig, state *RateLimitState, logger *logrus.Logger) *Client {
	logger.WithFields(logrus.Fields{
		"models":    len(cfg.Models),
		"fastModel": cfg.FastModel,
	}).Info("Generation client initialized")

	return &Client{
		cfg:   cfg,
		chain: NewModelChain(cfg.Models),
		state: state,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
		now:    time.Now,
		after:  time.After,
	}
}

// Chain returns the configured fallback chain
func (c *Client) Chain() ModelChain {
	return c.chain
}

// GenerateText produces text for a prompt under the given role. While the
// rate-limit fallback is active the lighter model is used instead of the
// primary one. Every failure path returns a typed *Error.
func (c *Client) GenerateText(ctx context.Context, prompt, role string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &Error{Kind: KindConfig, Message: "generation API key is not configured"}
	}

	model := c.chain.Head()
	if c.state.FallbackActive() && c.cfg.FastModel != "" {
		model = c.cfg.FastModel
	}

	instruction := systemInstructions[role]
	fullPrompt := instruction + "\n\n" + prompt

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	text, err := c.generateContent(reqCtx, model, fullPrompt, false)
	if err == nil {
		c.state.RecordSuccess()
		return text, nil
	}

	// Rate-limit signals take precedence even when the deadline was hit
	if isRateLimitSignal(statusOf(err), err.Error()) {
		delay := c.state.RecordRateLimit(c.now())
		c.logger.WithFields(logrus.Fields{
			"model":    model,
			"failures": c.state.Failures(),
			"backoff":  delay,
		}).Warn("Generation rate limited")
		return "", &Error{Kind: KindRateLimited, Status: 429, Model: model, Message: err.Error()}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "", &Error{Kind: KindTimeout, Model: model, Message: "generation request timed out"}
	}

	c.logger.WithError(err).WithField("model", model).Error("Generation request failed")
	return "", &Error{Kind: KindGeneric, Status: statusOf(err), Model: model, Message: err.Error()}
}

// generateContent performs a single request against the generation
// endpoint. withTuning attaches the safety settings and generation
// parameters used for long-form content.
func (c *Client) generateContent(ctx context.Context, model, prompt string, withTuning bool) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	if withTuning {
		reqBody["safetySettings"] = c.safetySettings()
		reqBody["generationConfig"] = map[string]interface{}{
			"temperature":     c.cfg.Generation.Temperature,
			"maxOutputTokens": c.cfg.Generation.MaxOutputTokens,
			"topP":            c.cfg.Generation.TopP,
			"topK":            c.cfg.Generation.TopK,
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.WithField("model", model).Debug("Sending generation request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
				Status  string `json:"status"`
			} `json:"error"`
		}
		message := string(body)
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return "", &httpError{status: resp.StatusCode, message: message}
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	return text.String(), nil
}

func (c *Client) safetySettings() []map[string]string {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}

	settings := make([]map[string]string, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, map[string]string{
			"category":  category,
			"threshold": c.cfg.SafetyThreshold,
		})
	}
	return settings
}
