package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/careerhub-go/internal/config"
	"github.com/careerhub-go/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Project query order fields
const (
	OrderByCreatedAt = "createdAt"
	OrderByTeamSize  = "teamSize"
)

// ErrCursorMismatch is returned when a cursor is replayed against a query
// with a different shape than the one that produced it
var ErrCursorMismatch = errors.New("cursor does not match query shape")

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// Cursor is an opaque pagination token tied to a specific query shape
type Cursor string

// ProjectQuery describes a server-side project page request: at most one
// equality predicate and one order field, so no composite index is needed
type ProjectQuery struct {
	WorkMode string // equality predicate; empty or "all" means no predicate
	OrderBy  string
	Desc     bool
	Limit    int
	After    Cursor
}

// Store defines the document store contract
type Store interface {
	// Profile operations
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error

	// Project operations
	GetProject(ctx context.Context, id string) (*models.ProjectRecord, error)
	AddProject(ctx context.Context, project *models.ProjectRecord) (string, error)
	UpdateProject(ctx context.Context, project *models.ProjectRecord) error
	QueryProjects(ctx context.Context, query ProjectQuery) ([]models.ProjectRecord, Cursor, error)
}

// Manager manages different store backends
type Manager struct {
	store       Store
	logger      *logrus.Logger
	redisClient *redis.Client // Store redis client reference
}

// NewManager creates a new store manager
func NewManager(cfg *config.Config, logger *logrus.Logger) (*Manager, error) {
	manager := &Manager{
		logger: logger,
	}

	switch cfg.Storage.Type {
	case "redis":
		redisStore, err := NewRedisStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		manager.store = redisStore
		manager.redisClient = redisStore.client
	case "memory":
		manager.store = NewMemoryStore(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	return manager, nil
}

// GetRedisClient returns the Redis client if available
func (m *Manager) GetRedisClient() *redis.Client {
	return m.redisClient
}

// Delegate methods to underlying store
func (m *Manager) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return m.store.GetProfile(ctx, id)
}

func (m *Manager) SaveProfile(ctx context.Context, profile *models.Profile) error {
	return m.store.SaveProfile(ctx, profile)
}

func (m *Manager) GetProject(ctx context.Context, id string) (*models.ProjectRecord, error) {
	return m.store.GetProject(ctx, id)
}

func (m *Manager) AddProject(ctx context.Context, project *models.ProjectRecord) (string, error) {
	return m.store.AddProject(ctx, project)
}

func (m *Manager) UpdateProject(ctx context.Context, project *models.ProjectRecord) error {
	return m.store.UpdateProject(ctx, project)
}

func (m *Manager) QueryProjects(ctx context.Context, query ProjectQuery) ([]models.ProjectRecord, Cursor, error) {
	return m.store.QueryProjects(ctx, query)
}
