// Package cache provides the read-through memo used for per-record derived
// values and the key serializer that names its entries.
//
// The memo sits in front of the cache store and the catalog client:
//
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	keys := cache.NewDefaultKeySerializer()
//	typeName, err := cache.GetOrFetch(ctx, svc, keys.SerializeKey("GetRecordType", 25),
//		func(ctx context.Context) (string, error) {
//			return lookupType(ctx, 25)
//		})
//
// Failed fetches are not cached. Concurrent misses for one key share a
// single fetch. Entries are dropped explicitly with Delete when the
// underlying record is rewritten, or in bulk with DeleteByPrefix.
//
// Early refreshes are deliberately unsupported: a refresh running in the
// background would reach the catalog service outside of any caller's
// request.
package cache
