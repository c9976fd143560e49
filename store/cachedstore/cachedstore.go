// Package cachedstore decorates a store.Store with an in-process read-through
// memo. Reads are answered from the memo until a write invalidates them.
//
// Every read method keys its results by method name and arguments through a
// cache.KeySerializer. Writes pass through to the wrapped store and, when
// they succeed, drop the affected keys:
//
//	Upsert          Get for the row id, plus every name and list read
//	EvictOlderThan  everything, when at least one row was removed
//	Clear           everything, when at least one row was removed
//
// Returned rows and slices are copies, so callers may modify them freely.
package cachedstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/pkg/logger"
	"github.com/goliatone/go-catalog-cache/store"
)

// Namespace prefixes every key this package writes to the memo.
const Namespace = "store"

const (
	methodGet          = "Get"
	methodGetByName    = "GetByName"
	methodSearchByName = "SearchByName"
	methodPage         = "Page"
	methodFilter       = "Filter"
	methodCount        = "Count"
)

// readsAfterUpsert are the methods whose results any upsert may change,
// besides the Get of the upserted id.
var readsAfterUpsert = []string{methodGetByName, methodSearchByName, methodPage, methodFilter, methodCount}

var _ store.Store = (*Store)(nil)

// Store is a caching store.Store.
type Store struct {
	base  store.Store
	cache cache.CacheService
	keys  cache.KeySerializer
	log   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKeySerializer replaces the default namespaced serializer.
func WithKeySerializer(keys cache.KeySerializer) Option {
	return func(s *Store) {
		if keys != nil {
			s.keys = keys
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New wraps base with svc.
func New(base store.Store, svc cache.CacheService, opts ...Option) *Store {
	s := &Store{
		base:  base,
		cache: svc,
		keys:  cache.NewDefaultKeySerializer(Namespace),
		log:   logger.WithModule("cachedstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Base returns the wrapped store.
func (s *Store) Base() store.Store {
	return s.base
}

func (s *Store) Get(ctx context.Context, id int) (*store.CacheRow, error) {
	row, err := cache.GetOrFetch(ctx, s.cache, s.keys.SerializeKey(methodGet, id), func(ctx context.Context) (*store.CacheRow, error) {
		return s.base.Get(ctx, id)
	})
	return copyRow(row), err
}

func (s *Store) GetByName(ctx context.Context, name string) (*store.CacheRow, error) {
	row, err := cache.GetOrFetch(ctx, s.cache, s.keys.SerializeKey(methodGetByName, name), func(ctx context.Context) (*store.CacheRow, error) {
		return s.base.GetByName(ctx, name)
	})
	return copyRow(row), err
}

func (s *Store) SearchByName(ctx context.Context, query string, caseInsensitive bool) ([]store.CacheRow, error) {
	return s.rows(ctx, s.keys.SerializeKey(methodSearchByName, query, caseInsensitive), func(ctx context.Context) ([]store.CacheRow, error) {
		return s.base.SearchByName(ctx, query, caseInsensitive)
	})
}

func (s *Store) Page(ctx context.Context, offset, limit int) ([]store.CacheRow, error) {
	return s.rows(ctx, s.keys.SerializeKey(methodPage, offset, limit), func(ctx context.Context) ([]store.CacheRow, error) {
		return s.base.Page(ctx, offset, limit)
	})
}

func (s *Store) Filter(ctx context.Context, f store.Filter) ([]store.CacheRow, error) {
	return s.rows(ctx, s.keys.SerializeKey(methodFilter, f), func(ctx context.Context) ([]store.CacheRow, error) {
		return s.base.Filter(ctx, f)
	})
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return cache.GetOrFetch(ctx, s.cache, s.keys.SerializeKey(methodCount), func(ctx context.Context) (int, error) {
		return s.base.Count(ctx)
	})
}

func (s *Store) Upsert(ctx context.Context, row store.CacheRow) error {
	if err := s.base.Upsert(ctx, row); err != nil {
		return err
	}

	s.delete(ctx, s.keys.SerializeKey(methodGet, row.ID))
	s.invalidate(ctx, readsAfterUpsert...)
	return nil
}

func (s *Store) EvictOlderThan(ctx context.Context, cutoffMillis int64) (int, error) {
	n, err := s.base.EvictOlderThan(ctx, cutoffMillis)
	if err == nil && n > 0 {
		s.invalidateAll(ctx)
	}
	return n, err
}

func (s *Store) Clear(ctx context.Context) (int, error) {
	n, err := s.base.Clear(ctx)
	if err == nil && n > 0 {
		s.invalidateAll(ctx)
	}
	return n, err
}

func (s *Store) Close() error {
	return s.base.Close()
}

func (s *Store) rows(ctx context.Context, key string, fetch cache.FetchFn[[]store.CacheRow]) ([]store.CacheRow, error) {
	rows, err := cache.GetOrFetch(ctx, s.cache, key, fetch)
	if err != nil {
		return nil, err
	}
	out := make([]store.CacheRow, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *Store) invalidateAll(ctx context.Context) {
	s.invalidate(ctx, append([]string{methodGet}, readsAfterUpsert...)...)
}

func (s *Store) invalidate(ctx context.Context, methods ...string) {
	for _, method := range methods {
		if _, err := s.cache.DeleteByPrefix(ctx, cache.Prefix(s.keys, method)); err != nil {
			s.log.Warn("read cache invalidation failed", zap.String("method", method), zap.Error(err))
		}
	}
	// Count has no arguments, so its key carries no trailing separator.
	s.delete(ctx, s.keys.SerializeKey(methodCount))
}

func (s *Store) delete(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("read cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

func copyRow(row *store.CacheRow) *store.CacheRow {
	if row == nil {
		return nil
	}
	cpy := *row
	return &cpy
}
