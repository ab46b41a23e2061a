package resource

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"newera.app/reentry/internal/modules/resource/repository"
)

const pendingClicksKey = "pending:resource_clicks"

func clicksKey(resourceID uint) string {
	return fmt.Sprintf("resource:clicks:%d", resourceID)
}

// ClickCounter buffers resource detail views and flushes them to the clicks column.
type ClickCounter interface {
	RecordClick(ctx context.Context, resourceID uint) error
	StartClickSyncWorker(ctx context.Context, interval time.Duration)
}

type clickCounter struct {
	redisClient *redis.Client
	repo        repository.ResourceRepository
	logger      *zap.Logger
}

// NewClickCounter returns a counter buffered in redis; with a nil client every click hits the database.
func NewClickCounter(redisClient *redis.Client, repo repository.ResourceRepository, logger *zap.Logger) ClickCounter {
	return &clickCounter{redisClient: redisClient, repo: repo, logger: logger}
}

func (c *clickCounter) RecordClick(ctx context.Context, resourceID uint) error {
	if c.redisClient == nil {
		return c.repo.IncrementClicks(ctx, resourceID, 1)
	}

	if err := c.redisClient.Incr(ctx, clicksKey(resourceID)).Err(); err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	if err := c.redisClient.SAdd(ctx, pendingClicksKey, strconv.FormatUint(uint64(resourceID), 10)).Err(); err != nil {
		return fmt.Errorf("failed to add to pending: %w", err)
	}
	return nil
}

func (c *clickCounter) syncClicksToDB(ctx context.Context) {
	ids, err := c.redisClient.SMembers(ctx, pendingClicksKey).Result()
	if err != nil {
		c.logger.Error("failed to read pending resource clicks", zap.Error(err))
		return
	}

	if len(ids) == 0 {
		return
	}

	synced := 0
	for _, idStr := range ids {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			c.logger.Warn("invalid resource id in pending clicks", zap.String("id", idStr))
			c.redisClient.SRem(ctx, pendingClicksKey, idStr)
			continue
		}

		count, err := c.claim(ctx, idStr, uint(id))
		if err != nil {
			c.logger.Error("failed to read click count", zap.Uint64("resource_id", id), zap.Error(err))
			continue
		}

		if count <= 0 {
			continue
		}

		if err := c.repo.IncrementClicks(ctx, uint(id), count); err != nil {
			c.logger.Error("failed to flush clicks", zap.Uint64("resource_id", id), zap.Error(err))
			// put the count back for the next tick
			c.redisClient.IncrBy(ctx, clicksKey(uint(id)), int64(count))
			c.redisClient.SAdd(ctx, pendingClicksKey, idStr)
			continue
		}
		synced++
	}

	c.logger.Debug("synced resource clicks", zap.Int("resources", synced))
}

// claim takes the resource off the pending set before draining its counter, in
// one MULTI. A click landing afterwards re-adds the id together with a fresh counter.
func (c *clickCounter) claim(ctx context.Context, idStr string, id uint) (int, error) {
	var get *redis.StringCmd
	_, err := c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, pendingClicksKey, idStr)
		get = pipe.GetDel(ctx, clicksKey(id))
		return nil
	})
	if err != nil && err != redis.Nil {
		c.redisClient.SAdd(ctx, pendingClicksKey, idStr)
		return 0, err
	}

	count, err := get.Int()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

func (c *clickCounter) StartClickSyncWorker(ctx context.Context, interval time.Duration) {
	if c.redisClient == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.syncClicksToDB(ctx)
		case <-ctx.Done():
			c.syncClicksToDB(context.Background())
			return
		}
	}
}
