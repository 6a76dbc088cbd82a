package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumbot/model"
)

type countingResolver struct {
	res   *Resolution
	err   error
	calls int
}

func (c *countingResolver) Resolve(_ context.Context, _ string) (*Resolution, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.res, nil
}

// fakeRedis is an in-memory stand-in for the cacheClient subset.
type fakeRedis struct {
	data    map[string]string
	getErr  error
	deleted []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.data, key)
		f.deleted = append(f.deleted, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func yandexResolution() *Resolution {
	return &Resolution{
		PageURL: "https://song.link/y/123",
		Entity:  model.Entity{Title: "X", ArtistName: "Y", ThumbnailURL: "https://img/2"},
	}
}

func TestCachedResolverServesSecondLookupFromCache(t *testing.T) {
	upstream := &countingResolver{res: yandexResolution()}
	rdb := newFakeRedis()
	c := NewCachedResolver(upstream, rdb, time.Hour)
	ctx := context.Background()

	first, err := c.Resolve(ctx, "https://music.yandex.ru/album/1")
	require.NoError(t, err)
	require.Equal(t, 1, upstream.calls)

	second, err := c.Resolve(ctx, "https://music.yandex.ru/album/1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// The second lookup never reached the wrapped resolver.
	assert.Equal(t, 1, upstream.calls)
}

func TestCachedResolverKeysPerURL(t *testing.T) {
	upstream := &countingResolver{res: yandexResolution()}
	c := NewCachedResolver(upstream, newFakeRedis(), time.Hour)
	ctx := context.Background()

	_, err := c.Resolve(ctx, "https://music.yandex.ru/album/1")
	require.NoError(t, err)
	_, err = c.Resolve(ctx, "https://music.yandex.ru/album/2")
	require.NoError(t, err)

	assert.Equal(t, 2, upstream.calls)
}

func TestCachedResolverEvictsCorruptEntry(t *testing.T) {
	upstream := &countingResolver{res: yandexResolution()}
	rdb := newFakeRedis()
	rdb.data[cacheKey("https://music.yandex.ru/album/1")] = "{not json"

	c := NewCachedResolver(upstream, rdb, time.Hour)

	res, err := c.Resolve(context.Background(), "https://music.yandex.ru/album/1")
	require.NoError(t, err)
	assert.Equal(t, yandexResolution(), res)

	// The undecodable entry was dropped and replaced by a fresh fetch.
	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, []string{cacheKey("https://music.yandex.ru/album/1")}, rdb.deleted)
	assert.JSONEq(t,
		`{"pageUrl":"https://song.link/y/123","entity":{"title":"X","artistName":"Y","thumbnailUrl":"https://img/2"}}`,
		rdb.data[cacheKey("https://music.yandex.ru/album/1")])
}

func TestCachedResolverDoesNotCacheNoMatch(t *testing.T) {
	upstream := &countingResolver{err: ErrNoMatch}
	rdb := newFakeRedis()
	c := NewCachedResolver(upstream, rdb, time.Hour)
	ctx := context.Background()

	_, err := c.Resolve(ctx, "https://example.com/unknown")
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Empty(t, rdb.data)

	// An unresolvable link is retried upstream, not pinned by the cache.
	_, err = c.Resolve(ctx, "https://example.com/unknown")
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Equal(t, 2, upstream.calls)
}

func TestCachedResolverDegradesOnCacheFailure(t *testing.T) {
	upstream := &countingResolver{res: yandexResolution()}
	rdb := newFakeRedis()
	rdb.getErr = errors.New("connection refused")

	c := NewCachedResolver(upstream, rdb, time.Hour)

	res, err := c.Resolve(context.Background(), "https://music.yandex.ru/album/1")
	require.NoError(t, err)
	assert.Equal(t, yandexResolution(), res)
	assert.Equal(t, 1, upstream.calls)
}
