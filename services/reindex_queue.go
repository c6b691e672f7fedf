package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vnkhanh/e-course-backend/logger"
)

// ReindexQueue holds ids of courses whose search document needs a rebuild. Pushing an
// id twice keeps one entry.
type ReindexQueue interface {
	Push(ctx context.Context, ids ...uuid.UUID) error
	Pop(ctx context.Context, n int) ([]uuid.UUID, error)
}

type redisReindexQueue struct {
	rdb *goredis.Client
	key string
	log *logger.Logger
}

func NewRedisReindexQueue(rdb *goredis.Client, key string, baseLog *logger.Logger) ReindexQueue {
	if key == "" {
		key = "search:reindex"
	}
	return &redisReindexQueue{rdb: rdb, key: key, log: baseLog.With("service", "RedisReindexQueue")}
}

func (q *redisReindexQueue) Push(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		members = append(members, id.String())
	}
	if err := q.rdb.SAdd(ctx, q.key, members...).Err(); err != nil {
		return fmt.Errorf("redis sadd %s: %w", q.key, err)
	}
	return nil
}

func (q *redisReindexQueue) Pop(ctx context.Context, n int) ([]uuid.UUID, error) {
	raw, err := q.rdb.SPopN(ctx, q.key, int64(n)).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("redis spop %s: %w", q.key, err)
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			q.log.Warn("dropping malformed reindex entry", "value", s)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
