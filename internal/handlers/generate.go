package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/careerhub-go/internal/config"
	"github.com/careerhub-go/internal/i18n"
	"github.com/careerhub-go/internal/middleware"
	"github.com/careerhub-go/internal/models"
	"github.com/careerhub-go/internal/services/ai"
	"github.com/careerhub-go/internal/services/cache"
	"github.com/careerhub-go/pkg/markdown"
	"github.com/sirupsen/logrus"
)

// GenerateHandler serves the generation endpoints
type GenerateHandler struct {
	config      *config.Config
	ai          *ai.Client
	cache       cache.Service
	rateLimiter middleware.RateLimiter
	localizer   *i18n.Localizer
	metrics     *middleware.Metrics
	logger      *logrus.Logger
}

// NewGenerateHandler creates a generation handler
func NewGenerateHandler(
	cfg *config.Config,
	aiClient *ai.Client,
	cacheService cache.Service,
	rateLimiter middleware.RateLimiter,
	localizer *i18n.Localizer,
	metrics *middleware.Metrics,
	logger *logrus.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		config:      cfg,
		ai:          aiClient,
		cache:       cacheService,
		rateLimiter: rateLimiter,
		localizer:   localizer,
		metrics:     metrics,
		logger:      logger,
	}
}

type textRequest struct {
	Prompt string `json:"prompt"`
	Role   string `json:"role"`
}

type textResponse struct {
	Text  string `json:"text"`
	HTML  string `json:"html"`
	Model string `json:"model,omitempty"`
}

// HandleText serves POST /api/generate/text
func (h *GenerateHandler) HandleText(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r)

	if !h.allow(w, r, lang) {
		return
	}

	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: h.localizer.Get(lang, i18n.MsgInvalidRequest, nil),
		})
		return
	}

	if answer, found := h.cache.Get(r.Context(), req.Prompt, req.Role); found {
		h.metrics.RecordCacheHit()
		writeJSON(w, http.StatusOK, textResponse{Text: answer, HTML: markdown.ToDisplayHTML(answer)})
		return
	}
	h.metrics.RecordCacheMiss()

	start := time.Now()
	text, err := h.ai.GenerateText(r.Context(), req.Prompt, req.Role)
	if err != nil {
		h.metrics.RecordGeneration("text", "", "error", time.Since(start))
		writeGenerationError(w, h.localizer, lang, err)
		return
	}
	h.metrics.RecordGeneration("text", "", "success", time.Since(start))

	h.cache.Set(r.Context(), req.Prompt, req.Role, text)

	writeJSON(w, http.StatusOK, textResponse{Text: text, HTML: markdown.ToDisplayHTML(text)})
}

type resumeRequest struct {
	Profile models.Profile `json:"profile"`
	Model   string         `json:"model"`
	Style   string         `json:"style"`
}

type resumeResponse struct {
	HTML     string `json:"html"`
	Fallback bool   `json:"fallback"`
}

// HandleResume serves POST /api/generate/resume. Generated HTML that
// fails the quality check is replaced by the static template for the
// requested style; this path never surfaces a malformed-output error.
func (h *GenerateHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r)

	if !h.allow(w, r, lang) {
		return
	}

	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: h.localizer.Get(lang, i18n.MsgInvalidRequest, nil),
		})
		return
	}

	style := ai.NormalizeStyle(req.Style)

	start := time.Now()
	html, err := h.ai.GenerateResume(r.Context(), &req.Profile, req.Model, style)
	if err != nil {
		h.metrics.RecordGeneration("resume", req.Model, "error", time.Since(start))
		writeGenerationError(w, h.localizer, lang, err)
		return
	}
	h.metrics.RecordGeneration("resume", req.Model, "success", time.Since(start))

	if !ai.ValidateResumeHTML(html, req.Profile.DisplayName) {
		h.logger.WithField("style", style).Warn("Generated resume failed quality check, using template")
		h.metrics.RecordTemplateFallback()
		writeJSON(w, http.StatusOK, resumeResponse{
			HTML:     ai.RenderTemplate(style, &req.Profile),
			Fallback: true,
		})
		return
	}

	writeJSON(w, http.StatusOK, resumeResponse{HTML: html})
}

type analysisRequest struct {
	Resume  string `json:"resume"`
	Context string `json:"context"`
}

// HandleAnalysis serves POST /api/generate/analysis
func (h *GenerateHandler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r)

	if !h.allow(w, r, lang) {
		return
	}

	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Resume == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: h.localizer.Get(lang, i18n.MsgInvalidRequest, nil),
		})
		return
	}

	start := time.Now()
	analysis, err := h.ai.GenerateResumeAnalysis(r.Context(), req.Resume, req.Context)
	if err != nil {
		h.metrics.RecordGeneration("analysis", "", "error", time.Since(start))
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: h.localizer.Get(lang, i18n.MsgTryAgainLater, nil),
		})
		return
	}
	h.metrics.RecordGeneration("analysis", "", "success", time.Since(start))

	writeJSON(w, http.StatusOK, analysis)
}

func (h *GenerateHandler) allow(w http.ResponseWriter, r *http.Request, lang string) bool {
	if h.rateLimiter.Allow(userKey(r)) {
		return true
	}

	h.metrics.RecordRateLimitExceeded()
	writeJSON(w, http.StatusTooManyRequests, errorResponse{
		Error:       h.localizer.Get(lang, i18n.MsgRateLimitExceeded, nil),
		RateLimited: true,
	})
	return false
}
