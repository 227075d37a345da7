package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/careerhub-go/internal/config"
	"github.com/careerhub-go/internal/models"
	"github.com/careerhub-go/internal/services/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves scripted pages and records the queries it receives
type fakeStore struct {
	pages     [][]models.ProjectRecord
	profiles  map[string]*models.Profile
	queries   []store.ProjectQuery
	err       error
	cursorErr error

	mu          sync.Mutex
	profileHits int
}

func (f *fakeStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	f.profileHits++
	f.mu.Unlock()

	profile, ok := f.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return profile, nil
}

func (f *fakeStore) hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileHits
}

func (f *fakeStore) SaveProfile(ctx context.Context, profile *models.Profile) error { return nil }

func (f *fakeStore) GetProject(ctx context.Context, id string) (*models.ProjectRecord, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) AddProject(ctx context.Context, project *models.ProjectRecord) (string, error) {
	return project.ID, nil
}

func (f *fakeStore) UpdateProject(ctx context.Context, project *models.ProjectRecord) error {
	return nil
}

func (f *fakeStore) QueryProjects(ctx context.Context, query store.ProjectQuery) ([]models.ProjectRecord, store.Cursor, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, "", f.err
	}
	if f.cursorErr != nil && query.After != "" {
		err := f.cursorErr
		f.cursorErr = nil
		return nil, "", err
	}

	page := 0
	if query.After != "" {
		fmt.Sscanf(string(query.After), "page-%d", &page)
	}
	if page >= len(f.pages) {
		return nil, "", nil
	}
	return f.pages[page], store.Cursor(fmt.Sprintf("page-%d", page+1)), nil
}

func feedConfig() *config.FeedConfig {
	return &config.FeedConfig{PageSize: 3, OwnerCacheTTL: time.Minute}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func record(id, owner string, open bool) models.ProjectRecord {
	return models.ProjectRecord{
		ID:      id,
		Title:   "Project " + id,
		OwnerID: owner,
		IsOpen:  open,
		Mode:    models.WorkModeRemote,
	}
}

func TestFetchProjectsFirstPage(t *testing.T) {
	st := &fakeStore{
		pages: [][]models.ProjectRecord{
			{record("p1", "u1", true), record("p2", "u1", true), record("p3", "", true)},
		},
		profiles: map[string]*models.Profile{
			"u1": {ID: "u1", DisplayName: "Ada Lovelace", AvatarURL: "https://cdn/ada.png"},
		},
	}
	loader := NewLoader(st, feedConfig(), quietLogger())

	page, err := loader.FetchProjects(context.Background(), true)

	require.NoError(t, err)
	assert.Len(t, page.Projects, 3)
	assert.True(t, page.HasMore) // full page
	assert.False(t, page.Empty)
	assert.Equal(t, StateReady, loader.State())

	// First fetch starts without a cursor and without a mode predicate
	require.Len(t, st.queries, 1)
	assert.Empty(t, st.queries[0].After)
	assert.Empty(t, st.queries[0].WorkMode)
	assert.Equal(t, store.OrderByCreatedAt, st.queries[0].OrderBy)
	assert.True(t, st.queries[0].Desc)
	assert.Equal(t, 3, st.queries[0].Limit)

	// Owner enrichment, with the ownerless record degraded to placeholder
	assert.Equal(t, "Ada Lovelace", page.Projects[0].OwnerName)
	assert.Equal(t, "https://cdn/ada.png", page.Projects[0].OwnerAvatar)
	assert.Equal(t, unknownOwnerName, page.Projects[2].OwnerName)

	// Every record gets a score
	for _, item := range page.Projects {
		assert.GreaterOrEqual(t, item.Score, 50.0)
		assert.Less(t, item.Score, 100.0)
	}
}

func TestFetchProjectsAccumulatesAcrossPages(t *testing.T) {
	st := &fakeStore{
		pages: [][]models.ProjectRecord{
			{record("p1", "", true), record("p2", "", true), record("p3", "", true)},
			{record("p4", "", true), record("p5", "", true)},
		},
	}
	loader := NewLoader(st, feedConfig(), quietLogger())

	first, err := loader.FetchProjects(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, first.Projects, 3)
	assert.True(t, first.HasMore)

	second, err := loader.FetchProjects(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, second.Projects, 5)
	// Short page means the listing is exhausted
	assert.False(t, second.HasMore)

	// The second query carried the cursor from the first
	require.Len(t, st.queries, 2)
	assert.Equal(t, store.Cursor("page-1"), st.queries[1].After)

	// A further load-more is a no-op: no new query, same results
	third, err := loader.FetchProjects(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, third.Projects, 5)
	assert.False(t, third.HasMore)
	assert.Len(t, st.queries, 2)
}

func TestFetchProjectsResetDiscardsResults(t *testing.T) {
	st := &fakeStore{
		pages: [][]models.ProjectRecord{
			{record("p1", "", true), record("p2", "", true), record("p3", "", true)},
		},
	}
	loader := NewLoader(st, feedConfig(), quietLogger())

	_, err := loader.FetchProjects(context.Background(), true)
	require.NoError(t, err)

	page, err := loader.FetchProjects(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, page.Projects, 3)

	// Both fetches started from the first page
	require.Len(t, st.queries, 2)
	assert.Empty(t, st.queries[1].After)
}

func TestFetchProjectsFilteredPageCanBeShort(t *testing.T) {
	// A full server page of which two records are closed: filtering is
	// client-side, so the visible page shrinks but hasMore stays true
	st := &fakeStore{
		pages: [][]models.ProjectRecord{
			{record("p1", "", true), record("p2", "", false), record("p3", "", false)},
		},
	}
	loader := NewLoader(st, feedConfig(), quietLogger())
	loader.SetFilter(models.ProjectFilter{WorkMode: models.WorkModeAll, SortBy: store.OrderByCreatedAt, SortDesc: true, OpenOnly: true})

	page, err := loader.FetchProjects(context.Background(), true)

	require.NoError(t, err)
	assert.Len(t, page.Projects, 1)
	assert.True(t, page.HasMore)
	assert.False(t, page.Empty)
}

func TestFetchProjectsEmptySignal(t *testing.T) {
	st := &fakeStore{
		pages: [][]models.ProjectRecord{
			{record("p1", "", false), record("p2", "", false)},
		},
	}
	loader := NewLoader(st, feedConfig(), quietLogger())
	loader.SetFilter(models.ProjectFilter{OpenOnly: true})

	page, err := loader.FetchProjects(context.Background(), true)

	require.NoError(t, err)
	assert.Empty(t, page.Projects)
	assert.True(t, page.Empty)
	// Short page
	assert.False(t, page.HasMore)
}

func TestFetchProjectsErrorKeepsResults(t *testing.T) {
	st := &fakeStore{
		pages: [][]models.ProjectRecord{
			{record("p1", "", true), record("p2", "", true), record("p3", "", true)},
		},
	}
	loader := NewLoader(st, feedConfig(), quietLogger())

	_, err := loader.FetchProjects(context.Background(), true)
	require.NoError(t, err)

	st.err = errors.New("connection refused")
	_, err = loader.FetchProjects(context.Background(), false)

	require.Error(t, err)
	assert.Equal(t, StateError, loader.State())
	// Accumulated results survive the failure
	assert.Len(t, loader.Results(), 3)

	// And the session recovers on the next successful fetch
	st.err = nil
	page, err := loader.FetchProjects(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, StateReady, loader.State())
	assert.NotEmpty(t, page.Projects)
}

func TestFetchProjectsStaleCursorRestarts(t *testing.T) {
	st := &fakeStore{
		pages: [][]models.ProjectRecord{
			{record("p1", "", true), record("p2", "", true), record("p3", "", true)},
		},
		cursorErr: store.ErrCursorMismatch,
	}
	loader := NewLoader(st, feedConfig(), quietLogger())

	_, err := loader.FetchProjects(context.Background(), true)
	require.NoError(t, err)

	page, err := loader.FetchProjects(context.Background(), false)

	require.NoError(t, err)
	// The mismatch triggered a retry without a cursor
	require.Len(t, st.queries, 3)
	assert.NotEmpty(t, st.queries[1].After)
	assert.Empty(t, st.queries[2].After)

	// The restart discards the old accumulation: each record exactly once
	require.Len(t, page.Projects, 3)
	seen := make(map[string]int)
	for _, item := range page.Projects {
		seen[item.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "record %s duplicated after restart", id)
	}
}

func TestFetchProjectsCachesOwners(t *testing.T) {
	st := &fakeStore{
		pages: [][]models.ProjectRecord{
			{record("p1", "u1", true), record("p2", "u1", true), record("p3", "u1", true)},
			{record("p4", "u1", true)},
		},
		profiles: map[string]*models.Profile{
			"u1": {ID: "u1", DisplayName: "Ada Lovelace"},
		},
	}
	loader := NewLoader(st, feedConfig(), quietLogger())

	_, err := loader.FetchProjects(context.Background(), true)
	require.NoError(t, err)
	firstHits := st.hits()
	assert.GreaterOrEqual(t, firstHits, 1)

	// The second page reuses the cached owner
	_, err = loader.FetchProjects(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, firstHits, st.hits())
}

func TestFetchProjectsWorkModePredicate(t *testing.T) {
	st := &fakeStore{pages: [][]models.ProjectRecord{{}}}
	loader := NewLoader(st, feedConfig(), quietLogger())
	loader.SetFilter(models.ProjectFilter{WorkMode: models.WorkModeRemote, SortBy: store.OrderByTeamSize})

	_, err := loader.FetchProjects(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, st.queries, 1)
	assert.Equal(t, models.WorkModeRemote, st.queries[0].WorkMode)
	assert.Equal(t, store.OrderByTeamSize, st.queries[0].OrderBy)
}

func TestStoredScorerPrefersPersistedScore(t *testing.T) {
	scorer := StoredScorer(func(record *models.ProjectRecord) float64 { return 55 })

	stored := 91.5
	assert.Equal(t, 91.5, scorer(&models.ProjectRecord{MatchScore: &stored}))
	assert.Equal(t, 55.0, scorer(&models.ProjectRecord{}))
}

func TestPlaceholderScorerRange(t *testing.T) {
	scorer := PlaceholderScorer()

	for i := 0; i < 100; i++ {
		score := scorer(&models.ProjectRecord{})
		assert.GreaterOrEqual(t, score, 50.0)
		assert.Less(t, score, 100.0)
	}
}
