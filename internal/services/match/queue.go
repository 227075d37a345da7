package match

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/careerhub-go/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const jobsKey = "match:jobs"

// Queue enqueues match jobs for the external matching process
type Queue interface {
	Enqueue(ctx context.Context, job models.MatchJob) error
}

// NewQueue returns a redis-backed queue when a client is available and an
// in-memory queue otherwise
func NewQueue(client *redis.Client, logger *logrus.Logger) Queue {
	if client != nil {
		return &RedisQueue{client: client, logger: logger}
	}
	logger.Warn("No redis client, match jobs will stay in memory")
	return &MemoryQueue{}
}

// RedisQueue pushes jobs onto a redis list consumed elsewhere
type RedisQueue struct {
	client *redis.Client
	logger *logrus.Logger
}

func (q *RedisQueue) Enqueue(ctx context.Context, job models.MatchJob) error {
	fillDefaults(&job)

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := q.client.LPush(ctx, jobsKey, data).Err(); err != nil {
		return err
	}

	q.logger.WithFields(logrus.Fields{
		"kind":   job.Kind,
		"ref_id": job.RefID,
	}).Debug("Match job enqueued")
	return nil
}

// MemoryQueue accumulates jobs in memory; used without redis and in tests
type MemoryQueue struct {
	mu   sync.Mutex
	jobs []models.MatchJob
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job models.MatchJob) error {
	fillDefaults(&job)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

// Jobs returns a copy of the enqueued jobs
func (q *MemoryQueue) Jobs() []models.MatchJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.MatchJob, len(q.jobs))
	copy(out, q.jobs)
	return out
}

func fillDefaults(job *models.MatchJob) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}
}
