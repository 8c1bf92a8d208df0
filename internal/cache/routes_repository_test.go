package cache

import (
	"context"
	"testing"

	"dex-aggregator/internal/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, maxPerBucket, topN int64) *RoutesRepository {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRoutesRepository(client, maxPerBucket, topN, types.AllBuckets, nil)
}

func testRoute(poolAddr string) *types.Route {
	return types.NewRoute([]*types.Pool{{Protocol: types.ProtocolV2, Address: types.Address(poolAddr)}}, 100)
}

func TestSaveThenGetCachedRoutesRoundTrips(t *testing.T) {
	repo := newTestRepo(t, 10, 10)
	ctx := context.Background()
	key := types.CacheKey{ChainID: 1, TokenIn: "0xin", TokenOut: "0xout", TradeType: types.ExactIn, Bucket: types.Bucket1K}

	require.NoError(t, repo.SaveCachedRoutes(ctx, testRoute("0xpool1"), key))

	results, err := repo.GetCachedRoutes(ctx, 1, "0xin", "0xout", types.ExactIn)
	require.NoError(t, err)

	var found *types.CachedRouteBucketResult
	for i := range results {
		if results[i].Bucket == types.Bucket1K {
			found = &results[i]
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.Found)
	require.Len(t, found.Routes, 1)
	assert.Equal(t, "0xpool1", string(found.Routes[0].Path[0].Address))
}

func TestGetCachedRoutesMissForUnwrittenBucket(t *testing.T) {
	repo := newTestRepo(t, 10, 10)
	results, err := repo.GetCachedRoutes(context.Background(), 1, "0xin", "0xout", types.ExactIn)
	require.NoError(t, err)
	assert.Len(t, results, len(types.AllBuckets))
	for _, r := range results {
		assert.False(t, r.Found)
	}
}

func TestSaveCachedRoutesTrimsToMaxRoutesPerBucket(t *testing.T) {
	repo := newTestRepo(t, 2, 10)
	ctx := context.Background()
	key := types.CacheKey{ChainID: 1, TokenIn: "0xin", TokenOut: "0xout", TradeType: types.ExactIn, Bucket: types.Bucket100}

	for _, addr := range []string{"0xp1", "0xp2", "0xp3"} {
		require.NoError(t, repo.SaveCachedRoutes(ctx, testRoute(addr), key))
	}

	results, err := repo.GetCachedRoutes(ctx, 1, "0xin", "0xout", types.ExactIn)
	require.NoError(t, err)
	for _, r := range results {
		if r.Bucket == types.Bucket100 {
			assert.Len(t, r.Routes, 2)
		}
	}
}

func TestDeleteCachedRoutesRemovesBucket(t *testing.T) {
	repo := newTestRepo(t, 10, 10)
	ctx := context.Background()
	key := types.CacheKey{ChainID: 1, TokenIn: "0xin", TokenOut: "0xout", TradeType: types.ExactIn, Bucket: types.Bucket10}

	require.NoError(t, repo.SaveCachedRoutes(ctx, testRoute("0xpool"), key))
	ok, _ := repo.DeleteCachedRoutes(ctx, key)
	assert.True(t, ok)

	results, err := repo.GetCachedRoutes(ctx, 1, "0xin", "0xout", types.ExactIn)
	require.NoError(t, err)
	for _, r := range results {
		if r.Bucket == types.Bucket10 {
			assert.False(t, r.Found)
		}
	}
}

func TestConstructCachedRouteKeyMatchesNamespace(t *testing.T) {
	repo := newTestRepo(t, 10, 10)
	key := types.CacheKey{ChainID: 1, TokenIn: "0xin", TokenOut: "0xout", TradeType: types.ExactIn, Bucket: types.Bucket1}
	assert.Equal(t, key.Namespace(), repo.ConstructCachedRouteKey(1, "0xin", "0xout", types.ExactIn, types.Bucket1))
}

func TestBucketOfStepsThroughThresholds(t *testing.T) {
	assert.Equal(t, types.Bucket1, BucketOf(0.5))
	assert.Equal(t, types.Bucket100, BucketOf(100))
	assert.Equal(t, types.Bucket1M, BucketOf(50_000_000))
}
