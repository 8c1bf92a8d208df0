package cache

import (
	"strconv"

	"dex-aggregator/internal/types"
)

// BucketOf maps a USD notional to the smallest UsdBucket whose threshold
// covers it (§3, §9 glossary "USD bucket"), stepping through the closed
// enumeration in ascending order. Notionals larger than every threshold
// fall into the largest bucket.
func BucketOf(usdNotional float64) types.UsdBucket {
	for _, b := range types.AllBuckets {
		threshold, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			continue
		}
		if usdNotional <= threshold {
			return b
		}
	}
	return types.AllBuckets[len(types.AllBuckets)-1]
}
