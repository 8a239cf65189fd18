package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type LeaderboardCache interface {
	Get(ctx context.Context, key string) ([]LeaderboardEntry, bool, error)
	Set(ctx context.Context, key string, entries []LeaderboardEntry) error
	Delete(ctx context.Context, keys ...string) error
}

type noopLeaderboardCache struct{}

func NewNoopLeaderboardCache() LeaderboardCache { return noopLeaderboardCache{} }

func (noopLeaderboardCache) Get(context.Context, string) ([]LeaderboardEntry, bool, error) {
	return nil, false, nil
}
func (noopLeaderboardCache) Set(context.Context, string, []LeaderboardEntry) error { return nil }
func (noopLeaderboardCache) Delete(context.Context, ...string) error             { return nil }

type redisLeaderboardCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisLeaderboardCache(rdb *goredis.Client, ttl time.Duration) LeaderboardCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &redisLeaderboardCache{rdb: rdb, ttl: ttl}
}

func (c *redisLeaderboardCache) Get(ctx context.Context, key string) ([]LeaderboardEntry, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []LeaderboardEntry
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, key string, entries []LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

func (c *redisLeaderboardCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
