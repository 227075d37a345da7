package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/careerhub-go/internal/config"
	"github.com/careerhub-go/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Modes indexed by the redis backend. "all" is the unfiltered index.
var indexedModes = []string{models.WorkModeRemote, models.WorkModeOnsite, models.WorkModeHybrid}

// RedisStore implements the store using Redis. Project documents are JSON
// blobs; ordering is served from per-mode sorted sets keyed by order field.
type RedisStore struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisStore connects to redis and verifies the connection
func NewRedisStore(cfg *config.Config, logger *logrus.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Storage.Redis.Addr,
		Password: cfg.Storage.Redis.Password,
		DB:       cfg.Storage.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		logger: logger,
	}, nil
}

func (r *RedisStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	data, err := r.client.Get(ctx, profileKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *RedisStore) SaveProfile(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.UpdatedAt = time.Now()

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, profileKey(profile.ID), data, 0).Err()
}

func (r *RedisStore) GetProject(ctx context.Context, id string) (*models.ProjectRecord, error) {
	data, err := r.client.Get(ctx, projectKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var project models.ProjectRecord
	if err := json.Unmarshal([]byte(data), &project); err != nil {
		return nil, err
	}

	return &project, nil
}

func (r *RedisStore) AddProject(ctx context.Context, project *models.ProjectRecord) (string, error) {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}

	if err := r.writeProject(ctx, project); err != nil {
		return "", err
	}

	return project.ID, nil
}

func (r *RedisStore) UpdateProject(ctx context.Context, project *models.ProjectRecord) error {
	if project.ID == "" {
		return fmt.Errorf("project id is required")
	}
	if err := r.client.Get(ctx, projectKey(project.ID)).Err(); err == redis.Nil {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	// Drop stale index entries in case the mode changed
	if err := r.removeFromIndexes(ctx, project.ID); err != nil {
		return err
	}

	return r.writeProject(ctx, project)
}

// writeProject stores the document and indexes it under the unfiltered
// and per-mode sorted sets for each order field
func (r *RedisStore) writeProject(ctx context.Context, project *models.ProjectRecord) error {
	data, err := json.Marshal(project)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, projectKey(project.ID), data, 0)

	for _, mode := range []string{models.WorkModeAll, project.Mode} {
		pipe.ZAdd(ctx, orderKey(mode, OrderByCreatedAt), &redis.Z{
			Score:  float64(project.CreatedAt.UnixMilli()),
			Member: project.ID,
		})
		pipe.ZAdd(ctx, orderKey(mode, OrderByTeamSize), &redis.Z{
			Score:  float64(project.TeamSize),
			Member: project.ID,
		})
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) removeFromIndexes(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	for _, mode := range append([]string{models.WorkModeAll}, indexedModes...) {
		pipe.ZRem(ctx, orderKey(mode, OrderByCreatedAt), id)
		pipe.ZRem(ctx, orderKey(mode, OrderByTeamSize), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) QueryProjects(ctx context.Context, query ProjectQuery) ([]models.ProjectRecord, Cursor, error) {
	sig := querySignature(query)
	token, err := decodeCursor(query.After, sig)
	if err != nil {
		return nil, "", err
	}

	mode := query.WorkMode
	if mode == "" {
		mode = models.WorkModeAll
	}
	orderBy := query.OrderBy
	if orderBy != OrderByTeamSize {
		orderBy = OrderByCreatedAt
	}

	key := orderKey(mode, orderBy)
	start := int64(token.Offset)
	stop := start + int64(query.Limit) - 1

	var ids []string
	if query.Desc {
		ids, err = r.client.ZRevRange(ctx, key, start, stop).Result()
	} else {
		ids, err = r.client.ZRange(ctx, key, start, stop).Result()
	}
	if err != nil {
		return nil, "", err
	}
	if len(ids) == 0 {
		return nil, "", nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = projectKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, "", err
	}

	records := make([]models.ProjectRecord, 0, len(values))
	for i, val := range values {
		raw, ok := val.(string)
		if !ok {
			r.logger.WithField("id", ids[i]).Warn("Indexed project document missing")
			continue
		}
		var record models.ProjectRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			r.logger.WithError(err).WithField("id", ids[i]).Warn("Failed to decode project document")
			continue
		}
		records = append(records, record)
	}

	next := encodeCursor(sig, ids[len(ids)-1], token.Offset+len(ids))
	return records, next, nil
}

func orderKey(mode, orderBy string) string {
	return fmt.Sprintf("projects:%s:by:%s", mode, orderBy)
}
