package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"taskhub/internal/domain"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
)

var (
	hits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "task_cache_hits_total",
		Help: "Task list reads served from the cache",
	})
	misses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "task_cache_misses_total",
		Help: "Task list reads that fell through to the store",
	})
)

func init() {
	prometheus.MustRegister(hits, misses)
}

// TaskCache holds the full ordered task list per user under
// tasks:<user_id> with a fixed TTL. The store stays authoritative:
// every entry is disposable and every failure is safe to ignore.
//
// A nil Redis client is allowed and turns every Get into a miss and
// every Set/Invalidate into a no-op.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &TaskCache{rdb: rdb, ttl: ttl}
}

func key(userID uuid.UUID) string {
	return "tasks:" + userID.String()
}

// Get returns the cached list for userID. ok is false on a miss;
// an expired or absent entry is a miss, not an error.
func (c *TaskCache) Get(ctx context.Context, userID uuid.UUID) ([]domain.Task, bool, error) {
	if c.rdb == nil {
		misses.Inc()
		return nil, false, nil
	}

	data, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		misses.Inc()
		return nil, false, nil
	}
	if err != nil {
		misses.Inc()
		return nil, false, err
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		// corrupt entry: drop it and treat as a miss
		_ = c.rdb.Del(ctx, key(userID)).Err()
		misses.Inc()
		return nil, false, err
	}

	hits.Inc()
	return tasks, true, nil
}

// Set stores or overwrites the entry for userID, resetting the TTL.
func (c *TaskCache) Set(ctx context.Context, userID uuid.UUID, tasks []domain.Task) error {
	if c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(userID), data, c.ttl).Err()
}

// Invalidate removes the entry for userID. Idempotent.
func (c *TaskCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, key(userID)).Err()
}
