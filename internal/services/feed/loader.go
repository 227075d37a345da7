package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/careerhub-go/internal/config"
	"github.com/careerhub-go/internal/models"
	"github.com/careerhub-go/internal/services/store"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// State of a loader session
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoadingMore
	StateReady
	StateError
)

const unknownOwnerName = "Unknown user"

// Page is the result of one fetch: the full accumulated result list, the
// load-more flag, and the explicit empty signal for a reset that filtered
// everything out
type Page struct {
	Projects []models.EnrichedProject `json:"projects"`
	HasMore  bool                     `json:"hasMore"`
	Empty    bool                     `json:"empty"`
}

// Loader retrieves, filters, sorts and incrementally pages project
// listings for one query session. Results accumulate across load-more
// calls until the next reset.
type Loader struct {
	store    store.Store
	logger   *logrus.Logger
	scorer   Scorer
	owners   *cache.Cache
	pageSize int

	mu      sync.Mutex
	filter  models.ProjectFilter
	results []models.EnrichedProject
	cursor  store.Cursor
	hasMore bool
	loading bool
	state   State
}

// NewLoader creates a loader over the given store
func NewLoader(st store.Store, cfg *config.FeedConfig, logger *logrus.Logger) *Loader {
	return &Loader{
		store:    st,
		logger:   logger,
		scorer:   PlaceholderScorer(),
		owners:   cache.New(cfg.OwnerCacheTTL, cfg.OwnerCacheTTL*2),
		pageSize: cfg.PageSize,
		hasMore:  true,
		filter: models.ProjectFilter{
			WorkMode: models.WorkModeAll,
			SortBy:   store.OrderByCreatedAt,
			SortDesc: true,
		},
	}
}

// SetScorer replaces the relevance scorer
func (l *Loader) SetScorer(scorer Scorer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scorer = scorer
}

// SetFilter installs a new filter spec and discards the cursor: a cursor
// is only valid for the exact query shape that produced it, so the next
// fetch restarts from the first page
func (l *Loader) SetFilter(filter models.ProjectFilter) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.filter = filter
	l.cursor = ""
	l.hasMore = true
}

// State returns the current session state
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Results returns a copy of the accumulated result list
func (l *Loader) Results() []models.EnrichedProject {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Loader) snapshotLocked() []models.EnrichedProject {
	out := make([]models.EnrichedProject, len(l.results))
	copy(out, l.results)
	return out
}

// FetchProjects loads the first page (reset) or the next page. It is a
// no-op while a fetch is in flight and once hasMore is false; transport
// failures flag the error state but leave accumulated results untouched.
func (l *Loader) FetchProjects(ctx context.Context, reset bool) (*Page, error) {
	l.mu.Lock()
	if l.loading {
		page := &Page{Projects: l.snapshotLocked(), HasMore: l.hasMore}
		l.mu.Unlock()
		return page, nil
	}
	if !reset && !l.hasMore {
		page := &Page{Projects: l.snapshotLocked(), HasMore: false}
		l.mu.Unlock()
		return page, nil
	}

	if reset {
		l.cursor = ""
		l.results = nil
		l.hasMore = true
		l.state = StateLoading
	} else {
		l.state = StateLoadingMore
	}
	l.loading = true
	filter := l.filter
	cursor := l.cursor
	l.mu.Unlock()

	query := buildQuery(filter, l.pageSize, cursor)

	records, next, err := l.store.QueryProjects(ctx, query)
	if errors.Is(err, store.ErrCursorMismatch) {
		// A stale cursor survived a shape change; the accumulated results
		// belong to the old shape, so restart from scratch
		l.logger.Warn("Stale feed cursor, restarting from first page")
		query.After = ""
		reset = true
		l.mu.Lock()
		l.results = nil
		l.mu.Unlock()
		records, next, err = l.store.QueryProjects(ctx, query)
	}
	if err != nil {
		l.logger.WithError(err).Error("Feed query failed")
		l.mu.Lock()
		l.loading = false
		l.state = StateError
		l.mu.Unlock()
		return nil, err
	}

	enriched := l.enrich(ctx, records)
	filtered := ApplyFilters(filter, enriched)
	for i := range filtered {
		filtered[i].Score = l.scorer(&filtered[i].ProjectRecord)
	}

	l.mu.Lock()
	l.hasMore = len(records) == l.pageSize
	l.cursor = next
	l.results = append(l.results, filtered...)
	l.loading = false
	l.state = StateReady

	page := &Page{
		Projects: l.snapshotLocked(),
		HasMore:  l.hasMore,
		Empty:    reset && len(filtered) == 0,
	}
	l.mu.Unlock()

	l.logger.WithFields(logrus.Fields{
		"fetched":  len(records),
		"filtered": len(filtered),
		"hasMore":  page.HasMore,
		"reset":    reset,
	}).Debug("Feed page loaded")

	return page, nil
}

// buildQuery keeps only the predicates that are safe server-side:
// equality on work mode and a single order field
func buildQuery(filter models.ProjectFilter, pageSize int, cursor store.Cursor) store.ProjectQuery {
	mode := filter.WorkMode
	if mode == models.WorkModeAll {
		mode = ""
	}
	orderBy := filter.SortBy
	if orderBy == "" {
		orderBy = store.OrderByCreatedAt
	}

	return store.ProjectQuery{
		WorkMode: mode,
		OrderBy:  orderBy,
		Desc:     filter.SortDesc,
		Limit:    pageSize,
		After:    cursor,
	}
}

// enrich looks up owner display data for every record of a page
// concurrently. A failed lookup degrades that record to placeholder
// values instead of failing the page.
func (l *Loader) enrich(ctx context.Context, records []models.ProjectRecord) []models.EnrichedProject {
	out := make([]models.EnrichedProject, len(records))

	g, gctx := errgroup.WithContext(ctx)
	for i := range records {
		i := i
		g.Go(func() error {
			record := records[i]
			out[i] = models.EnrichedProject{
				ProjectRecord: record,
				OwnerName:     unknownOwnerName,
			}

			if record.OwnerID == "" {
				return nil
			}

			if val, found := l.owners.Get(record.OwnerID); found {
				owner := val.(models.Profile)
				out[i].OwnerName = owner.DisplayName
				out[i].OwnerAvatar = owner.AvatarURL
				return nil
			}

			owner, err := l.store.GetProfile(gctx, record.OwnerID)
			if err != nil || owner == nil {
				l.logger.WithField("owner_id", record.OwnerID).Debug("Owner lookup failed, using placeholder")
				return nil
			}

			l.owners.SetDefault(record.OwnerID, *owner)
			out[i].OwnerName = owner.DisplayName
			out[i].OwnerAvatar = owner.AvatarURL
			return nil
		})
	}
	g.Wait()

	return out
}
