package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*PageCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewPageCache(rdb, time.Minute, nil), mr
}

func TestPageCache_Fetch(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	builds := 0
	build := func(context.Context) (interface{}, error) {
		builds++
		return map[string]int{"n": builds}, nil
	}

	body, err := cache.Fetch(ctx, "/livro", build)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(body))

	body, err = cache.Fetch(ctx, "/livro", build)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(body), "second read is served from redis")
	assert.Equal(t, 1, builds)
	assert.True(t, mr.Exists("livro:page:/livro"))
	assert.Equal(t, time.Minute, mr.TTL("livro:page:/livro"))

	require.NoError(t, cache.Invalidate(ctx, "/livro"))
	assert.False(t, mr.Exists("livro:page:/livro"))

	body, err = cache.Fetch(ctx, "/livro", build)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(body))
}

func TestPageCache_BuildErrorNotCached(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	_, err := cache.Fetch(ctx, "/livro/x", func(context.Context) (interface{}, error) {
		return nil, notFound("grupo")
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("livro:page:/livro/x"))
}

func TestPageCache_RedisDownStillServes(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	mr.Close()

	body, err := cache.Fetch(ctx, "/livro", func(context.Context) (interface{}, error) {
		return []string{"ok"}, nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `["ok"]`, string(body))
}

func TestRevalidator(t *testing.T) {
	ctx := context.Background()

	t.Run("dedupes and publishes refreshed paths", func(t *testing.T) {
		rec := &pageRecorder{}
		NewRevalidator(rec, rec, nil).Revalidate(ctx, "encontro", PathCalendar, PathBookIndex, PathCalendar, "", "/livro/jovens")

		assert.Equal(t, []string{PathCalendar, PathBookIndex, "/livro/jovens"}, rec.invalidated())
		require.Len(t, rec.notices, 1)
		assert.Equal(t, "encontro", rec.notices[0].Source)
		assert.Equal(t, []string{PathCalendar, PathBookIndex, "/livro/jovens"}, rec.notices[0].Paths)
	})

	t.Run("a failing path does not stop the others", func(t *testing.T) {
		rec := &pageRecorder{failOn: map[string]bool{PathCalendar: true}}
		NewRevalidator(rec, rec, nil).Revalidate(ctx, "grupo", PathCalendar, PathBookIndex)

		assert.Equal(t, []string{PathBookIndex}, rec.invalidated())
		require.Len(t, rec.notices, 1)
		assert.Equal(t, []string{PathBookIndex}, rec.notices[0].Paths)
	})

	t.Run("publisher errors are swallowed", func(t *testing.T) {
		rec := &pageRecorder{}
		NewRevalidator(rec, failingPublisher{}, nil).Revalidate(ctx, "grupo", PathBookIndex)
		assert.Equal(t, []string{PathBookIndex}, rec.invalidated())
	})

	t.Run("nil revalidator is a no-op", func(t *testing.T) {
		var r *Revalidator
		assert.NotPanics(t, func() { r.Revalidate(ctx, "grupo", PathBookIndex) })
	})

	t.Run("redis backed invalidation", func(t *testing.T) {
		cache, mr := newTestCache(t)
		require.NoError(t, cache.Set(ctx, PathCalendar, []byte(`{}`)))
		NewRevalidator(cache, nil, nil).Revalidate(ctx, "evento", BookPages()...)
		assert.False(t, mr.Exists("livro:page:"+PathCalendar))
	})
}

type failingPublisher struct{}

func (failingPublisher) PublishRevalidation(context.Context, RevalidationNotice) error {
	return errors.New("broker down")
}
