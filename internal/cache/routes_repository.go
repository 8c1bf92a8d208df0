// Package cache implements the §4.6 bucketed cached-routes repository: a
// Redis sorted set per (chain, token_in, token_out, trade_type, usd_bucket)
// key, generalizing the teacher's RedisStore (internal/cache/redis_store.go
// in the original tree) from a per-pool string-keyed store to a
// score-ordered route cache.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"dex-aggregator/internal/types"

	"github.com/go-redis/redis/v8"
	"github.com/nats-io/nats.go"
)

// RoutesRepository is a ports.CachedRoutesRepository backed by Redis sorted
// sets, one per cache key, scored by insertion time so ZREVRANGE yields
// most-recently-inserted first (§4.6).
type RoutesRepository struct {
	client             *redis.Client
	maxRoutesPerBucket int64
	topNFromCache      int64
	buckets            []types.UsdBucket

	// publisher is the optional "internal queue" §4.6 mentions
	// ("may publish a message on an internal queue; no consumer guarantees
	// here"). A nil publisher makes SaveCachedRoutes a pure cache write.
	publisher *nats.Conn
	subject   string
}

// NewRoutesRepository builds a RoutesRepository. publisher may be nil.
func NewRoutesRepository(client *redis.Client, maxRoutesPerBucket, topNFromCache int64, buckets []types.UsdBucket, publisher *nats.Conn) *RoutesRepository {
	if len(buckets) == 0 {
		buckets = types.AllBuckets
	}
	return &RoutesRepository{
		client:             client,
		maxRoutesPerBucket: maxRoutesPerBucket,
		topNFromCache:      topNFromCache,
		buckets:            buckets,
		publisher:          publisher,
		subject:            "dex.cached_routes.saved",
	}
}

// ConstructCachedRouteKey renders the deterministic namespace for a cache
// key, matching the contract §6 requires of constructCachedRouteKey.
func (r *RoutesRepository) ConstructCachedRouteKey(chainID int64, in, out types.Address, tradeType types.TradeType, bucket types.UsdBucket) string {
	return types.CacheKey{ChainID: chainID, TokenIn: in, TokenOut: out, TradeType: tradeType, Bucket: bucket}.Namespace()
}

// SaveCachedRoutes inserts the route into the bucket's sorted set scored by
// the current monotonic time, then trims the set down to
// maxRoutesPerBucket, evicting the lowest-scored (oldest) entries first
// (§4.6). It also fire-and-forgets a notification on the optional
// publisher; a publish failure is not propagated since there are no
// consumer guarantees on that channel.
func (r *RoutesRepository) SaveCachedRoutes(ctx context.Context, route *types.Route, key types.CacheKey) error {
	visible := route.VisiblePath()
	if len(visible) == 0 {
		return nil
	}
	encodable := &types.Route{Protocol: route.Protocol, Path: visible, Percentage: route.Percentage}
	encoded, err := json.Marshal(encodable)
	if err != nil {
		return err
	}

	zkey := key.Namespace()
	score := float64(time.Now().UnixNano())
	if err := r.client.ZAdd(ctx, zkey, &redis.Z{Score: score, Member: encoded}).Err(); err != nil {
		return err
	}

	if r.maxRoutesPerBucket > 0 {
		// Ranks are ascending by score; removing [0, size-max-1] keeps only
		// the top maxRoutesPerBucket highest-scored (most recent) entries.
		if err := r.client.ZRemRangeByRank(ctx, zkey, 0, -(r.maxRoutesPerBucket + 1)).Err(); err != nil {
			return err
		}
	}

	if r.publisher != nil {
		go r.publisher.Publish(r.subject, encoded)
	}

	return nil
}

// GetCachedRoutes reads every configured bucket for (chain, in, out,
// tradeType), highest-score first, capped at topNFromCache, and decodes
// each entry. A bucket whose Redis read fails is reported as not found
// rather than as an error, since cache reads never fail a request (§7); a
// decode failure skips just that entry (§4.6).
func (r *RoutesRepository) GetCachedRoutes(ctx context.Context, chainID int64, in, out types.Address, tradeType types.TradeType) ([]types.CachedRouteBucketResult, error) {
	results := make([]types.CachedRouteBucketResult, 0, len(r.buckets))

	for _, bucket := range r.buckets {
		key := types.CacheKey{ChainID: chainID, TokenIn: in, TokenOut: out, TradeType: tradeType, Bucket: bucket}
		stop := r.topNFromCache - 1
		if stop < 0 {
			stop = -1
		}

		members, err := r.client.ZRevRange(ctx, key.Namespace(), 0, stop).Result()
		if err != nil {
			results = append(results, types.CachedRouteBucketResult{Bucket: bucket, Found: false, Message: "cache miss"})
			continue
		}

		var routes []*types.Route
		for _, m := range members {
			var route types.Route
			if jsonErr := json.Unmarshal([]byte(m), &route); jsonErr != nil {
				continue
			}
			routes = append(routes, &route)
		}

		results = append(results, types.CachedRouteBucketResult{
			Bucket: bucket,
			Routes: routes,
			Found:  len(routes) > 0,
		})
	}

	return results, nil
}

// DeleteCachedRoutes deletes the bucket's sorted set entirely. success is
// true iff the backing delete returned without an I/O error (§4.6).
func (r *RoutesRepository) DeleteCachedRoutes(ctx context.Context, key types.CacheKey) (bool, string) {
	if err := r.client.Del(ctx, key.Namespace()).Err(); err != nil {
		return false, err.Error()
	}
	return true, "deleted"
}
