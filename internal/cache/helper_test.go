package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupCacheTest(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestGetSetJSONRoundTrip(t *testing.T) {
	setupCacheTest(t)
	ctx := context.Background()

	var missing cachedThing
	found, err := GetJSON(ctx, "things:1", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "things:1", cachedThing{Name: "a", Count: 2}, time.Minute))

	var got cachedThing
	found, err = GetJSON(ctx, "things:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedThing{Name: "a", Count: 2}, got)
}

func TestAsideFetchesOnMissAndCaches(t *testing.T) {
	setupCacheTest(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			*dest = cachedThing{Name: "fetched", Count: calls}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "things:2", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)

	// Second read is served from the cache.
	var second cachedThing
	require.NoError(t, Aside(ctx, "things:2", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestInvalidateUserForcesRefetch(t *testing.T) {
	setupCacheTest(t)
	ctx := context.Background()

	key := UserKey(42)
	require.NoError(t, SetJSON(ctx, key, cachedThing{Name: "stale"}, time.Minute))

	InvalidateUser(ctx, 42)

	var got cachedThing
	found, err := GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHelpersDegradeWithoutClient(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var got cachedThing
	found, err := GetJSON(ctx, "things:3", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "things:3", cachedThing{}, time.Minute))

	// Aside always falls through to fetch.
	calls := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(ctx, "things:3", &got, time.Minute, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}
