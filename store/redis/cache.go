// Package redis provides an optional Redis tier in front of the score table.
//
// Scores are frozen once stored, so entries are never invalidated one by one.
// Whoever empties the score table must call Purge so a hit stays the row the
// database holds. Redis failures are logged and the call falls through to the
// wrapped store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/warp/workday-engine/config"
	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/performance"
)

const (
	keyPrefix  = "workday:score:"
	purgeBatch = 100
)

// NewClient connects and pings. The caller decides whether a failure is fatal.
func NewClient(cfg config.RedisConfig, logger *zap.Logger) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))
	return rdb, nil
}

// ScoreCache is a read-through performance.ScoreStore.
type ScoreCache struct {
	rdb    goredis.Cmdable
	next   performance.ScoreStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewScoreCache wraps next. ttl <= 0 keeps entries until evicted.
func NewScoreCache(rdb goredis.Cmdable, next performance.ScoreStore, ttl time.Duration, logger *zap.Logger) *ScoreCache {
	if ttl < 0 {
		ttl = 0
	}
	return &ScoreCache{rdb: rdb, next: next, ttl: ttl, logger: logger}
}

func scoreKey(userID generic.UserID, month generic.MonthRef) string {
	return keyPrefix + userID.String() + ":" + month.String()
}

// GetScore checks Redis, then the wrapped store, and back-fills on a store hit.
func (c *ScoreCache) GetScore(ctx context.Context, userID generic.UserID, month generic.MonthRef) (*performance.Score, error) {
	key := scoreKey(userID, month)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var s performance.Score
		if jerr := json.Unmarshal(raw, &s); jerr == nil {
			return &s, nil
		}
		c.logger.Warn("dropping undecodable cached score", zap.String("key", key))
		c.rdb.Del(ctx, key)
	case !errors.Is(err, goredis.Nil):
		c.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
	}

	stored, err := c.next.GetScore(ctx, userID, month)
	if err != nil || stored == nil {
		return stored, err
	}
	c.remember(ctx, key, *stored)
	return stored, nil
}

// InsertScoreIfAbsent lets the wrapped store settle the race, then caches the winner.
func (c *ScoreCache) InsertScoreIfAbsent(ctx context.Context, s performance.Score) (performance.Score, error) {
	kept, err := c.next.InsertScoreIfAbsent(ctx, s)
	if err != nil {
		return kept, err
	}
	c.remember(ctx, scoreKey(kept.UserID, kept.MonthRef()), kept)
	return kept, nil
}

func (c *ScoreCache) remember(ctx context.Context, key string, s performance.Score) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.rdb.SetNX(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("redis setnx failed", zap.String("key", key), zap.Error(err))
	}
}

// Purge deletes every cached score. Call it after the score table is cleared.
func (c *ScoreCache) Purge(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, keyPrefix+"*", purgeBatch).Result()
		if err != nil {
			return fmt.Errorf("scan cached scores: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete cached scores: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

var _ performance.ScoreStore = (*ScoreCache)(nil)
