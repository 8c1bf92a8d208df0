package types

import "fmt"

// UsdBucket is a notional-magnitude bin used as a cache partition key, so
// that routes cached for "$10k-scale" trades are only reused for similarly
// sized trades (§3, GLOSSARY).
type UsdBucket string

const (
	Bucket1    UsdBucket = "1"
	Bucket10   UsdBucket = "10"
	Bucket100  UsdBucket = "100"
	Bucket1K   UsdBucket = "1000"
	Bucket10K  UsdBucket = "10000"
	Bucket100K UsdBucket = "100000"
	Bucket1M   UsdBucket = "1000000"
)

// AllBuckets is the closed enumeration in ascending order, matching the
// default thresholds a BucketOf implementation steps through.
var AllBuckets = []UsdBucket{Bucket1, Bucket10, Bucket100, Bucket1K, Bucket10K, Bucket100K, Bucket1M}

// CacheKey is the 6-tuple identifying a cached-routes partition (§3, §4.6).
type CacheKey struct {
	ChainID   int64
	TokenIn   Address
	TokenOut  Address
	TradeType TradeType
	Bucket    UsdBucket
}

// Namespace renders a deterministic, process-restart-stable string form of
// the key, the contract required of constructCachedRouteKey (§4.6).
func (k CacheKey) Namespace() string {
	return fmt.Sprintf("routes:%d:%s:%s:%s:%s", k.ChainID, k.TokenIn, k.TokenOut, k.TradeType, k.Bucket)
}

// BucketlessNamespace renders the key without the bucket suffix. The cache
// read path does not use it: getCachedRoutes builds one Namespace per
// configured bucket instead (§4.6).
func (k CacheKey) BucketlessNamespace() string {
	return fmt.Sprintf("routes:%d:%s:%s:%s", k.ChainID, k.TokenIn, k.TokenOut, k.TradeType)
}

// CachedRouteBucketResult is one element of getCachedRoutes' per-bucket
// result list (§4.6).
type CachedRouteBucketResult struct {
	Bucket  UsdBucket
	Routes  []*Route
	Found   bool
	Message string
}
