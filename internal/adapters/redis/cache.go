package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"review_mapper/internal/adapters/observability"
	"review_mapper/internal/domain"
)

// RowCache stores raw review rows as JSON under review:<id>.
type RowCache struct {
	c   *redis.Client
	ttl time.Duration
}

func New(addr, pass string, db int, ttl time.Duration) *RowCache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), ttl)
}

func NewWithClient(c *redis.Client, ttl time.Duration) *RowCache {
	return &RowCache{c: c, ttl: ttl}
}

func key(id int64) string { return fmt.Sprintf("review:%d", id) }

func (r *RowCache) GetRow(ctx context.Context, id int64) (domain.ReviewRow, bool, error) {
	v, err := r.c.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return domain.ReviewRow{}, false, nil
	}
	if err != nil {
		return domain.ReviewRow{}, false, err
	}
	var row domain.ReviewRow
	if err := json.Unmarshal(v, &row); err != nil {
		return domain.ReviewRow{}, false, fmt.Errorf("decode cached review %d: %w", id, err)
	}
	observability.ObserveCache("redis", "hit")
	return row, true, nil
}

func (r *RowCache) SetRow(ctx context.Context, row domain.ReviewRow) error {
	b, err := json.Marshal(row)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, key(row.ID), b, r.ttl).Err()
}

func (r *RowCache) DelRow(ctx context.Context, id int64) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, key(id)).Err()
}

// Flush deletes every review:* key. SCAN keeps it from blocking the server
// the way KEYS would.
func (r *RowCache) Flush(ctx context.Context) error {
	iter := r.c.Scan(ctx, 0, "review:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	observability.ObserveCache("redis", "flush")
	if len(keys) == 0 {
		return nil
	}
	return r.c.Del(ctx, keys...).Err()
}

func (r *RowCache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *RowCache) Close() error { return r.c.Close() }
