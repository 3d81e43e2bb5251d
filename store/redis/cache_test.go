package redis_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/performance"
	"github.com/warp/workday-engine/store/memory"
	"github.com/warp/workday-engine/store/redis"
)

// fakeRedis answers the commands the cache uses from a map.
type fakeRedis struct {
	goredis.Cmdable
	data map[string]string
	down bool
	gets int

	scanned []string
}

func newFakeRedis() *fakeRedis { return &fakeRedis{data: make(map[string]string)} }

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	f.gets++
	if f.down {
		return goredis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *goredis.BoolCmd {
	if f.down {
		return goredis.NewBoolResult(false, errors.New("connection refused"))
	}
	if _, ok := f.data[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.data[key] = string(value.([]byte))
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return goredis.NewIntResult(int64(len(keys)), nil)
}

// Scan pages through matching keys two at a time. The key set is fixed
// when a scan starts, so deletes between pages don't shift the cursor.
func (f *fakeRedis) Scan(_ context.Context, cursor uint64, match string, _ int64) *goredis.ScanCmd {
	if f.down {
		return goredis.NewScanCmdResult(nil, 0, errors.New("connection refused"))
	}
	if cursor == 0 {
		prefix := strings.TrimSuffix(match, "*")
		f.scanned = f.scanned[:0]
		for k := range f.data {
			if strings.HasPrefix(k, prefix) {
				f.scanned = append(f.scanned, k)
			}
		}
		sort.Strings(f.scanned)
	}
	start := int(cursor)
	end := start + 2
	if end >= len(f.scanned) {
		return goredis.NewScanCmdResult(f.scanned[start:], 0, nil)
	}
	return goredis.NewScanCmdResult(f.scanned[start:end], uint64(end), nil)
}

func june(t *testing.T) generic.MonthRef {
	t.Helper()
	ref, err := generic.NewMonthRef(2025, 6)
	require.NoError(t, err)
	return ref
}

func score(id string, value float64) performance.Score {
	return performance.Score{
		ID:         id,
		UserID:     "u1",
		Month:      6,
		Year:       2025,
		Score:      value,
		ComputedAt: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestScoreCache_InsertThenHit(t *testing.T) {
	// GIVEN: An empty cache in front of an empty store
	rdb := newFakeRedis()
	store := memory.New(time.UTC)
	cache := redis.NewScoreCache(rdb, store, 0, zap.NewNop())
	ctx := context.Background()

	// WHEN: A score is inserted
	kept, err := cache.InsertScoreIfAbsent(ctx, score("s1", 65.5))
	require.NoError(t, err)
	assert.Equal(t, "s1", kept.ID)

	// THEN: It is cached under the user-month key and served from Redis
	assert.Contains(t, rdb.data, "workday:score:u1:2025-06")

	got, err := cache.GetScore(ctx, "u1", june(t))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, 65.5, got.Score)
}

func TestScoreCache_PurgeAfterReset(t *testing.T) {
	// GIVEN: Three cached scores and an unrelated key
	rdb := newFakeRedis()
	rdb.data["session:abc"] = "keep"
	store := memory.New(time.UTC)
	cache := redis.NewScoreCache(rdb, store, 0, zap.NewNop())
	ctx := context.Background()
	for _, user := range []generic.UserID{"u1", "u2", "u3"} {
		s := score("s-"+user.String(), 50)
		s.UserID = user
		_, err := cache.InsertScoreIfAbsent(ctx, s)
		require.NoError(t, err)
	}

	// WHEN: The store is cleared and the cache purged
	require.NoError(t, store.Reset(ctx))
	require.NoError(t, cache.Purge(ctx))

	// THEN: Nothing stale is served and other keys survive
	got, err := cache.GetScore(ctx, "u1", june(t))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, map[string]string{"session:abc": "keep"}, rdb.data)
}

func TestScoreCache_PurgeRedisDown(t *testing.T) {
	rdb := newFakeRedis()
	rdb.down = true
	cache := redis.NewScoreCache(rdb, memory.New(time.UTC), 0, zap.NewNop())

	assert.Error(t, cache.Purge(context.Background()))
}

func TestScoreCache_MissBackfillsFromStore(t *testing.T) {
	rdb := newFakeRedis()
	store := memory.New(time.UTC)
	ctx := context.Background()
	_, err := store.InsertScoreIfAbsent(ctx, score("s1", 40))
	require.NoError(t, err)
	cache := redis.NewScoreCache(rdb, store, time.Hour, zap.NewNop())

	got, err := cache.GetScore(ctx, "u1", june(t))

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 40.0, got.Score)
	assert.Contains(t, rdb.data, "workday:score:u1:2025-06")
}

func TestScoreCache_MissEverywhere(t *testing.T) {
	rdb := newFakeRedis()
	cache := redis.NewScoreCache(rdb, memory.New(time.UTC), 0, zap.NewNop())

	got, err := cache.GetScore(context.Background(), "u1", june(t))

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, rdb.data)
}

func TestScoreCache_RaceLoserCachesWinner(t *testing.T) {
	rdb := newFakeRedis()
	store := memory.New(time.UTC)
	ctx := context.Background()
	_, err := store.InsertScoreIfAbsent(ctx, score("winner", 70))
	require.NoError(t, err)
	cache := redis.NewScoreCache(rdb, store, 0, zap.NewNop())

	kept, err := cache.InsertScoreIfAbsent(ctx, score("loser", 10))

	require.NoError(t, err)
	assert.Equal(t, "winner", kept.ID)
	got, err := cache.GetScore(ctx, "u1", june(t))
	require.NoError(t, err)
	assert.Equal(t, "winner", got.ID)
}

func TestScoreCache_UndecodableEntryDropped(t *testing.T) {
	rdb := newFakeRedis()
	rdb.data["workday:score:u1:2025-06"] = "{not json"
	store := memory.New(time.UTC)
	ctx := context.Background()
	_, err := store.InsertScoreIfAbsent(ctx, score("s1", 55))
	require.NoError(t, err)
	cache := redis.NewScoreCache(rdb, store, 0, zap.NewNop())

	got, err := cache.GetScore(ctx, "u1", june(t))

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.ID)
	assert.NotEqual(t, "{not json", rdb.data["workday:score:u1:2025-06"], "replaced by the stored row")
}

func TestScoreCache_RedisDownFallsThrough(t *testing.T) {
	rdb := newFakeRedis()
	rdb.down = true
	store := memory.New(time.UTC)
	cache := redis.NewScoreCache(rdb, store, 0, zap.NewNop())
	ctx := context.Background()

	kept, err := cache.InsertScoreIfAbsent(ctx, score("s1", 30))
	require.NoError(t, err)
	assert.Equal(t, "s1", kept.ID)

	got, err := cache.GetScore(ctx, "u1", june(t))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 30.0, got.Score)
	assert.Equal(t, 1, rdb.gets)
}
