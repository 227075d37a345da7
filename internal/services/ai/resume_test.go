package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/careerhub-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *models.Profile {
	return &models.Profile{
		ID:          "user-1",
		DisplayName: "Ada Lovelace",
		Headline:    "Backend Engineer",
		Summary:     "Ten years building distributed systems.",
		Email:       "ada@example.com",
		Location:    "London",
		Skills:      []string{"Go", "Redis", "PostgreSQL"},
		Experience: []models.ExperienceEntry{
			{Title: "Staff Engineer", Company: "Analytical Engines", Period: "2019-2024", Description: "Led the platform team."},
		},
		Education: []models.EducationEntry{
			{School: "UCL", Degree: "BSc", Field: "Mathematics", Period: "2010-2013"},
		},
	}
}

func TestGenerateResumeFallsBackOnNotFound(t *testing.T) {
	var requestedModels []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model := modelFromPath(r.URL.Path)
		requestedModels = append(requestedModels, model)
		if model == "gemini-1.5-pro" {
			writeAPIError(w, 404, "model not found")
			return
		}
		writeCandidate(w, "```html\n<div style=\"color:#222\">resume</div>\n```")
	}))
	defer server.Close()

	client, delays := newTestClient(server.URL)

	var fallbacks [][2]string
	client.OnFallback = func(from, to string) {
		fallbacks = append(fallbacks, [2]string{from, to})
	}

	html, err := client.GenerateResume(context.Background(), testProfile(), "gemini-1.5-pro", StyleModern)

	require.NoError(t, err)
	assert.Equal(t, `<div style="color:#222">resume</div>`, html)
	assert.Equal(t, []string{"gemini-1.5-pro", "gemini-1.5-flash"}, requestedModels)
	assert.Equal(t, []time.Duration{2 * time.Second}, *delays)
	assert.Equal(t, [][2]string{{"gemini-1.5-pro", "gemini-1.5-flash"}}, fallbacks)

	// Success clears the failures recorded along the chain
	assert.Equal(t, 0, client.state.Failures())
	assert.False(t, client.state.FallbackActive())
}

func TestGenerateResumeSuccessResetsState(t *testing.T) {
	var requestedModels []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedModels = append(requestedModels, modelFromPath(r.URL.Path))
		writeCandidate(w, "<div style=\"color:#222\">resume</div>")
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)
	client.state.RecordRateLimit(client.now())
	require.True(t, client.state.FallbackActive())

	_, err := client.GenerateResume(context.Background(), testProfile(), "", StyleModern)
	require.NoError(t, err)

	assert.False(t, client.state.FallbackActive())
	assert.Equal(t, 0, client.state.Failures())

	// Subsequent text generation returns to the primary model
	_, err = client.GenerateText(context.Background(), "hello", RoleDefault)
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", requestedModels[len(requestedModels)-1])
}

func TestGenerateResumeExhaustsChainOnRateLimit(t *testing.T) {
	var requestedModels []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedModels = append(requestedModels, modelFromPath(r.URL.Path))
		writeAPIError(w, 429, "quota exhausted")
	}))
	defer server.Close()

	client, delays := newTestClient(server.URL)

	_, err := client.GenerateResume(context.Background(), testProfile(), "", StyleStandard)

	require.Error(t, err)
	assert.Equal(t, KindRateLimited, KindOf(err))
	// Each model in the chain is tried exactly once, in order
	assert.Equal(t, testModels, requestedModels)
	// Backoff doubles between attempts, capped at 8s
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, *delays)
}

func TestGenerateResumeStartsMidChain(t *testing.T) {
	var requestedModels []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedModels = append(requestedModels, modelFromPath(r.URL.Path))
		writeAPIError(w, 404, "model not found")
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	_, err := client.GenerateResume(context.Background(), testProfile(), "gemini-1.5-flash-8b", StyleAcademic)

	require.Error(t, err)
	assert.Equal(t, KindModelUnavailable, KindOf(err))
	assert.Equal(t, []string{"gemini-1.5-flash-8b", "gemini-1.0-pro"}, requestedModels)
}

func TestGenerateResumeNormalizesUnknownModel(t *testing.T) {
	var requestedModels []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedModels = append(requestedModels, modelFromPath(r.URL.Path))
		writeCandidate(w, "<div>ok</div>")
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	_, err := client.GenerateResume(context.Background(), testProfile(), "gpt-4", StyleModern)

	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-1.5-pro"}, requestedModels)
}

func TestGenerateResumeDoesNotRetryGenericErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		writeAPIError(w, 500, "internal model error")
	}))
	defer server.Close()

	client, delays := newTestClient(server.URL)

	_, err := client.GenerateResume(context.Background(), testProfile(), "", StyleModern)

	require.Error(t, err)
	assert.Equal(t, KindGeneric, KindOf(err))
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *delays)
}

func TestGenerateResumeMissingAPIKey(t *testing.T) {
	client, _ := newTestClient("http://unused")
	client.cfg.APIKey = ""

	_, err := client.GenerateResume(context.Background(), testProfile(), "", StyleModern)

	require.Error(t, err)
	assert.Equal(t, KindConfig, KindOf(err))
}

func TestGenerateResumeAnalysisParsesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCandidate(w, "```json\n{\"score\": 85, \"strengths\": [\"clear\"], "+
			"\"improvements\": [\"metrics\"], \"detailedFeedback\": \"good\", "+
			"\"enhancedContent\": \"<p>better</p>\"}\n```")
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	analysis, err := client.GenerateResumeAnalysis(context.Background(), "<p>resume</p>", "backend roles")

	require.NoError(t, err)
	assert.Equal(t, 85, analysis.Score)
	assert.Equal(t, []string{"clear"}, analysis.Strengths)
	assert.Equal(t, "<p>better</p>", analysis.EnhancedContent)
}

func TestGenerateResumeAnalysisFallsBackOnBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCandidate(w, "Here is my analysis: the resume looks fine.")
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	analysis, err := client.GenerateResumeAnalysis(context.Background(), "<p>resume</p>", "")

	require.NoError(t, err)
	assert.Equal(t, 70, analysis.Score)
	assert.Equal(t, "<p>resume</p>", analysis.EnhancedContent)
	assert.NotEmpty(t, analysis.Strengths)
	assert.NotEmpty(t, analysis.Improvements)
}

func TestGenerateResumeAnalysisSurfacesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, 503, "backend unavailable")
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	analysis, err := client.GenerateResumeAnalysis(context.Background(), "<p>resume</p>", "")

	require.Error(t, err)
	assert.Nil(t, analysis)
	assert.Equal(t, KindGeneric, KindOf(err))
}

func TestBuildResumePromptFillsMissingFields(t *testing.T) {
	prompt := buildResumePrompt(&models.Profile{DisplayName: "Ada Lovelace"}, StyleStandard)

	assert.Contains(t, prompt, "Name: Ada Lovelace")
	assert.Contains(t, prompt, "Headline: Not provided")
	assert.Contains(t, prompt, styleDescriptors[StyleStandard])
}
