// Package repository orchestrates the catalog client and the local cache.
//
// Reads go to the catalog service first and persist what they receive;
// when the service fails, the same answer shape is rebuilt from the cache.
// Search and filter never touch the network. Every operation returns a
// Result carrying either a value or a *failure.Error.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/mapper"
	"github.com/goliatone/go-catalog-cache/pkg/failure"
	"github.com/goliatone/go-catalog-cache/pkg/logger"
	"github.com/goliatone/go-catalog-cache/pkg/metrics"
	"github.com/goliatone/go-catalog-cache/record"
	"github.com/goliatone/go-catalog-cache/store"
)

const methodRecordType = "GetRecordType"

// Repository is safe for concurrent use.
type Repository struct {
	client catalog.Client
	store  store.Store
	cfg    Config
	memo   cache.CacheService
	keys   cache.KeySerializer
	log    *zap.Logger
	now    func() time.Time
}

// New wires a repository over client and st. Without WithCacheService a
// sturdyc memo with default settings is created.
func New(client catalog.Client, st store.Store, opts ...Option) (*Repository, error) {
	if client == nil || st == nil {
		return nil, fmt.Errorf("repository: client and store are required")
	}

	r := &Repository{
		client: client,
		store:  st,
		cfg:    DefaultConfig(),
		log:    logger.WithModule("repository"),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("repository: invalid config: %w", err)
	}
	if r.keys == nil {
		r.keys = cache.NewDefaultKeySerializer()
	}
	if r.memo == nil {
		memo, err := cache.NewCacheService(cache.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("repository: memo: %w", err)
		}
		r.memo = memo
	}
	return r, nil
}

// Config returns the effective configuration.
func (r *Repository) Config() Config {
	return r.cfg
}

func (r *Repository) fetchPage(ctx context.Context, offset int) (catalog.PageDTO, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()
	return r.client.FetchPage(ctx, offset, r.cfg.PageSize)
}

func (r *Repository) fetchDetail(ctx context.Context, id int) (record.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	dto, err := r.client.FetchByID(ctx, id)
	if err != nil {
		return record.Record{}, err
	}
	return mapper.ToDomain(dto), nil
}

// save persists rec. Failures are logged and counted, never returned: the
// caller already holds a good answer from the network.
func (r *Repository) save(ctx context.Context, rec record.Record) {
	if ctx.Err() != nil {
		return
	}

	row, err := mapper.ToCacheRow(rec, r.now())
	if err == nil {
		err = r.store.Upsert(ctx, row)
	}
	if err != nil {
		metrics.CacheWriteFailures.Inc()
		r.log.Warn("cache write failed", zap.Int("id", rec.ID), zap.Error(err))
		return
	}

	if err := r.memo.Delete(ctx, r.keys.SerializeKey(methodRecordType, rec.ID)); err != nil {
		r.log.Debug("memo invalidation failed", zap.Int("id", rec.ID), zap.Error(err))
	}
}

// canceled reports whether the caller gave up; the failure is then not a
// reason to fall back to the cache.
func canceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || failure.IsKind(err, failure.KindCanceled)
}

// unavailable reports whether err is a catalog failure the cache may
// answer for. Rejected requests are returned to the caller as they are.
func unavailable(err error) bool {
	switch failure.KindOf(err) {
	case failure.KindNetworkUnavailable, failure.KindTimeout, failure.KindServerError, failure.KindNotFound:
		return true
	}
	return false
}

func (r *Repository) fallback(operation string, err error) {
	metrics.CacheFallbacks.WithLabelValues(operation).Inc()
	r.log.Info("catalog unavailable, reading cache",
		zap.String("operation", operation),
		zap.String("kind", string(failure.KindOf(err))),
		zap.Error(err),
	)
}

// decodeRows converts rows to listing items, skipping rows that no longer
// decode.
func (r *Repository) decodeRows(rows []store.CacheRow) []record.ListingItem {
	items := make([]record.ListingItem, 0, len(rows))
	for _, row := range rows {
		rec, err := mapper.FromCacheRow(row)
		if err != nil {
			r.log.Warn("skipping corrupt cache row", zap.Int("id", row.ID), zap.Error(err))
			continue
		}
		items = append(items, mapper.ToListingItem(rec))
	}
	return items
}

func cachePage(items []record.ListingItem) record.ListingPage {
	return record.ListingPage{
		TotalCount: len(items),
		Items:      items,
		Source:     record.SourceCache,
	}
}

func storageFailure(ctx context.Context, op string, err error) *failure.Error {
	if ctx.Err() != nil {
		return failure.ErrCanceled.WithInternal(err)
	}
	return failure.Wrap(failure.KindStorageIOError, err, "cache "+op+" failed")
}
