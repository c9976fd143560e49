package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/pkg/metrics"
)

// ClearStaleCache deletes rows fetched more than RetentionWindow ago and
// returns how many were removed. Reads never evict; this is the only path.
func (r *Repository) ClearStaleCache(ctx context.Context) Result[int] {
	cutoff := r.now().Add(-r.cfg.RetentionWindow)

	deleted, err := r.store.EvictOlderThan(ctx, cutoff.UnixMilli())
	if err != nil {
		return Failure[int](storageFailure(ctx, "eviction", err))
	}

	if deleted > 0 {
		metrics.EvictedRows.Add(float64(deleted))
		r.resetMemo(ctx)
	}
	r.log.Info("stale cache cleared", zap.Int("deleted", deleted), zap.Time("cutoff", cutoff))
	return Success(deleted)
}

// ClearCache drops every cached row and memo entry.
func (r *Repository) ClearCache(ctx context.Context) Result[int] {
	deleted, err := r.store.Clear(ctx)
	if err != nil {
		return Failure[int](storageFailure(ctx, "clear", err))
	}

	metrics.EvictedRows.Add(float64(deleted))
	r.resetMemo(ctx)
	r.log.Info("cache cleared", zap.Int("deleted", deleted))
	return Success(deleted)
}

// CachedCount reports how many records the cache holds.
func (r *Repository) CachedCount(ctx context.Context) Result[int] {
	n, err := r.store.Count(ctx)
	if err != nil {
		return Failure[int](storageFailure(ctx, "count", err))
	}
	return Success(n)
}

func (r *Repository) resetMemo(ctx context.Context) {
	if _, err := r.memo.DeleteByPrefix(ctx, cache.Prefix(r.keys, methodRecordType)); err != nil {
		r.log.Debug("memo reset failed", zap.Error(err))
	}
}
