package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mkovalyov/focusaid/internal/models"
)

const (
	taskListKey = "tasks:list"
	taskListTTL = 15 * time.Second
)

// TaskCache is a read-through cache for the task list endpoint. A nil
// *RedisTaskCache satisfies it as a disabled cache, so callers never branch on
// configuration.
type TaskCache interface {
	GetTaskList(ctx context.Context) ([]models.Task, bool)
	SetTaskList(ctx context.Context, tasks []models.Task)
	InvalidateTaskList(ctx context.Context)
}

type RedisTaskCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisTaskCache connects to Redis from a URL. Cache failures are soft:
// every method degrades to a miss or a no-op and logs at debug level, so the
// store remains the source of truth.
func NewRedisTaskCache(url string, logger *zap.Logger) (*RedisTaskCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTaskCache{rdb: redis.NewClient(opts), logger: logger}, nil
}

func (c *RedisTaskCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *RedisTaskCache) GetTaskList(ctx context.Context) ([]models.Task, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	val, err := c.rdb.Get(ctx, taskListKey).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Debug("task cache get failed", zap.Error(err))
		return nil, false
	}

	var tasks []models.Task
	if err := json.Unmarshal([]byte(val), &tasks); err != nil {
		c.logger.Debug("task cache decode failed", zap.Error(err))
		return nil, false
	}

	return tasks, true
}

func (c *RedisTaskCache) SetTaskList(ctx context.Context, tasks []models.Task) {
	if c == nil || c.rdb == nil {
		return
	}

	payload, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, taskListKey, payload, taskListTTL).Err(); err != nil {
		c.logger.Debug("task cache set failed", zap.Error(err))
	}
}

func (c *RedisTaskCache) InvalidateTaskList(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, taskListKey).Err(); err != nil {
		c.logger.Debug("task cache invalidate failed", zap.Error(err))
	}
}
