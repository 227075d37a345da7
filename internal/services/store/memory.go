package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/careerhub-go/internal/config"
	"github.com/careerhub-go/internal/models"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// MemoryStore implements the store using in-memory caches
type MemoryStore struct {
	profiles *cache.Cache
	projects *cache.Cache
	logger   *logrus.Logger
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore(cfg *config.Config, logger *logrus.Logger) *MemoryStore {
	expiration := cfg.Storage.Memory.DefaultExpiration
	cleanup := cfg.Storage.Memory.CleanupInterval
	if expiration == 0 {
		expiration = cache.NoExpiration
	}
	if cleanup == 0 {
		cleanup = 10 * time.Minute
	}

	return &MemoryStore{
		profiles: cache.New(cache.NoExpiration, cleanup),
		projects: cache.New(expiration, cleanup),
		logger:   logger,
	}
}

func (m *MemoryStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	if val, found := m.profiles.Get(profileKey(id)); found {
		profile := val.(models.Profile)
		return &profile, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) SaveProfile(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.UpdatedAt = time.Now()
	m.profiles.Set(profileKey(profile.ID), *profile, cache.NoExpiration)
	return nil
}

func (m *MemoryStore) GetProject(ctx context.Context, id string) (*models.ProjectRecord, error) {
	if val, found := m.projects.Get(projectKey(id)); found {
		project := val.(models.ProjectRecord)
		return &project, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) AddProject(ctx context.Context, project *models.ProjectRecord) (string, error) {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}
	m.projects.SetDefault(projectKey(project.ID), *project)
	return project.ID, nil
}

func (m *MemoryStore) UpdateProject(ctx context.Context, project *models.ProjectRecord) error {
	if project.ID == "" {
		return fmt.Errorf("project id is required")
	}
	if _, found := m.projects.Get(projectKey(project.ID)); !found {
		return ErrNotFound
	}
	m.projects.SetDefault(projectKey(project.ID), *project)
	return nil
}

func (m *MemoryStore) QueryProjects(ctx context.Context, query ProjectQuery) ([]models.ProjectRecord, Cursor, error) {
	sig := querySignature(query)
	token, err := decodeCursor(query.After, sig)
	if err != nil {
		return nil, "", err
	}

	// Snapshot all records, apply the equality predicate
	var records []models.ProjectRecord
	for _, item := range m.projects.Items() {
		record := item.Object.(models.ProjectRecord)
		if query.WorkMode != "" && query.WorkMode != models.WorkModeAll && record.Mode != query.WorkMode {
			continue
		}
		records = append(records, record)
	}

	sortProjects(records, query.OrderBy, query.Desc)

	// Page out from the cursor offset
	start := token.Offset
	if start > len(records) {
		start = len(records)
	}
	end := start + query.Limit
	if query.Limit <= 0 || end > len(records) {
		end = len(records)
	}
	page := records[start:end]

	var next Cursor
	if len(page) > 0 {
		next = encodeCursor(sig, page[len(page)-1].ID, end)
	}

	return page, next, nil
}

// sortProjects orders records by a single field with the ID as a
// deterministic tie-breaker
func sortProjects(records []models.ProjectRecord, orderBy string, desc bool) {
	less := func(a, b *models.ProjectRecord) bool {
		switch orderBy {
		case OrderByTeamSize:
			if a.TeamSize != b.TeamSize {
				return a.TeamSize < b.TeamSize
			}
		default: // createdAt
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}

	sort.Slice(records, func(i, j int) bool {
		if desc {
			return less(&records[j], &records[i])
		}
		return less(&records[i], &records[j])
	})
}

func profileKey(id string) string {
	return fmt.Sprintf("profile:%s", id)
}

func projectKey(id string) string {
	return fmt.Sprintf("project:%s", id)
}
