package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/careerhub-go/internal/config"
	"github.com/careerhub-go/internal/i18n"
	"github.com/careerhub-go/internal/middleware"
	"github.com/careerhub-go/internal/models"
	"github.com/careerhub-go/internal/services/feed"
	"github.com/careerhub-go/internal/services/match"
	"github.com/careerhub-go/internal/services/store"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ProjectHandler serves the project feed and mutation endpoints
type ProjectHandler struct {
	config    *config.Config
	storage   *store.Manager
	queue     match.Queue
	localizer *i18n.Localizer
	metrics   *middleware.Metrics
	logger    *logrus.Logger

	// One loader session per caller; sessions keep the cursor and the
	// accumulated result list between load-more calls
	mu      sync.Mutex
	loaders map[string]*feed.Loader
}

// NewProjectHandler creates a project handler
func NewProjectHandler(
	cfg *config.Config,
	storage *store.Manager,
	queue match.Queue,
	localizer *i18n.Localizer,
	metrics *middleware.Metrics,
	logger *logrus.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		config:    cfg,
		storage:   storage,
		queue:     queue,
		localizer: localizer,
		metrics:   metrics,
		logger:    logger,
		loaders:   make(map[string]*feed.Loader),
	}
}

func (h *ProjectHandler) getLoader(userKey string) *feed.Loader {
	h.mu.Lock()
	defer h.mu.Unlock()

	if loader, exists := h.loaders[userKey]; exists {
		return loader
	}

	loader := feed.NewLoader(h.storage, &h.config.Feed, h.logger)
	loader.SetScorer(feed.StoredScorer(feed.PlaceholderScorer()))
	h.loaders[userKey] = loader
	return loader
}

// HandleList serves GET /api/projects. Requesting page=next continues the
// caller's session; anything else installs the filters from the query
// string and restarts from the first page.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r)
	loader := h.getLoader(userKey(r))

	reset := r.URL.Query().Get("page") != "next"
	if reset {
		loader.SetFilter(parseFilter(r))
	}

	start := time.Now()
	page, err := loader.FetchProjects(r.Context(), reset)
	if err != nil {
		h.metrics.RecordFeedQuery("error", time.Since(start))
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: h.localizer.Get(lang, i18n.MsgFeedUnavailable, nil),
		})
		return
	}
	h.metrics.RecordFeedQuery("success", time.Since(start))

	writeJSON(w, http.StatusOK, page)
}

// HandleCreate serves POST /api/projects and enqueues a match job for the
// new document
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r)

	var project models.ProjectRecord
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil || project.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: h.localizer.Get(lang, i18n.MsgInvalidRequest, nil),
		})
		return
	}

	id, err := h.storage.AddProject(r.Context(), &project)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create project")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: h.localizer.Get(lang, i18n.MsgTryAgainLater, nil),
		})
		return
	}

	h.enqueueMatchJob(r, models.MatchJobProject, id)

	writeJSON(w, http.StatusCreated, project)
}

// HandleUpdateProfile serves PUT /api/profile/{id} and enqueues a match
// job for the updated document
func (h *ProjectHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r)
	id := mux.Vars(r)["id"]

	var profile models.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil || id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: h.localizer.Get(lang, i18n.MsgInvalidRequest, nil),
		})
		return
	}
	profile.ID = id

	if err := h.storage.SaveProfile(r.Context(), &profile); err != nil {
		h.logger.WithError(err).Error("Failed to save profile")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: h.localizer.Get(lang, i18n.MsgTryAgainLater, nil),
		})
		return
	}

	h.enqueueMatchJob(r, models.MatchJobProfile, id)

	writeJSON(w, http.StatusOK, profile)
}

func (h *ProjectHandler) enqueueMatchJob(r *http.Request, kind, refID string) {
	job := models.MatchJob{Kind: kind, RefID: refID}
	if err := h.queue.Enqueue(r.Context(), job); err != nil {
		// The document write already succeeded; losing the job is logged,
		// not surfaced
		h.logger.WithError(err).WithField("ref_id", refID).Error("Failed to enqueue match job")
		h.metrics.RecordMatchJob(kind, "error")
		return
	}
	h.metrics.RecordMatchJob(kind, "success")
}

// parseFilter builds a filter spec from list query parameters
func parseFilter(r *http.Request) models.ProjectFilter {
	q := r.URL.Query()

	filter := models.ProjectFilter{
		Query:    q.Get("q"),
		WorkMode: q.Get("mode"),
		SortBy:   q.Get("sort"),
		SortDesc: q.Get("dir") != "asc",
		OpenOnly: q.Get("open") == "true",
	}

	if filter.WorkMode == "" {
		filter.WorkMode = models.WorkModeAll
	}
	if filter.SortBy == "" {
		filter.SortBy = store.OrderByCreatedAt
	}
	if tags := q.Get("tags"); tags != "" {
		filter.Tags = splitList(tags)
	}
	if skills := q.Get("skills"); skills != "" {
		filter.Skills = splitList(skills)
	}
	if min, err := strconv.Atoi(q.Get("teamMin")); err == nil {
		filter.TeamSizeMin = min
	}
	if max, err := strconv.Atoi(q.Get("teamMax")); err == nil {
		filter.TeamSizeMax = max
	}

	return filter
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
