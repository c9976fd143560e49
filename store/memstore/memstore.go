// Package memstore is an in-process store.Store backed by a concurrent map.
// Rows are copied in and out so readers never observe a partially written
// row.
package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-catalog-cache/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps rows in memory, keyed by id.
type Store struct {
	rows *xsync.MapOf[int, store.CacheRow]
}

// New returns an empty store.
func New() *Store {
	return &Store{rows: xsync.NewMapOf[int, store.CacheRow]()}
}

func (s *Store) Get(ctx context.Context, id int) (*store.CacheRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row, ok := s.rows.Load(id)
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *Store) GetByName(ctx context.Context, name string) (*store.CacheRow, error) {
	rows, err := s.collect(ctx, func(row store.CacheRow) bool { return row.Name == name })
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// SearchByName folds case with strings.ToLower, so non-ASCII letters match
// across case too.
func (s *Store) SearchByName(ctx context.Context, query string, caseInsensitive bool) ([]store.CacheRow, error) {
	if caseInsensitive {
		query = strings.ToLower(query)
	}
	return s.collect(ctx, func(row store.CacheRow) bool {
		name := row.Name
		if caseInsensitive {
			name = strings.ToLower(name)
		}
		return strings.Contains(name, query)
	})
}

func (s *Store) Page(ctx context.Context, offset, limit int) ([]store.CacheRow, error) {
	rows, err := s.collect(ctx, nil)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) || limit <= 0 {
		return []store.CacheRow{}, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (s *Store) Filter(ctx context.Context, f store.Filter) ([]store.CacheRow, error) {
	rows, err := s.collect(ctx, f.Matches)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return f.OrderBy.Less(rows[i], rows[j]) })
	return rows, nil
}

func (s *Store) Upsert(ctx context.Context, row store.CacheRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.rows.Store(row.ID, row)
	return nil
}

func (s *Store) EvictOlderThan(ctx context.Context, cutoffMillis int64) (int, error) {
	return s.deleteWhere(ctx, func(row store.CacheRow) bool { return row.FetchedAt < cutoffMillis })
}

func (s *Store) Clear(ctx context.Context) (int, error) {
	return s.deleteWhere(ctx, func(store.CacheRow) bool { return true })
}

func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.rows.Size(), nil
}

func (s *Store) Close() error {
	return nil
}

// collect returns the rows accepted by keep (all rows for a nil keep), id ascending.
func (s *Store) collect(ctx context.Context, keep func(store.CacheRow) bool) ([]store.CacheRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([]store.CacheRow, 0, s.rows.Size())
	s.rows.Range(func(_ int, row store.CacheRow) bool {
		if keep == nil || keep(row) {
			rows = append(rows, row)
		}
		return true
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

// deleteWhere removes matching rows. The predicate is re-checked under the
// per-key lock so a concurrent upsert of a fresh row is never evicted.
func (s *Store) deleteWhere(ctx context.Context, match func(store.CacheRow) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var ids []int
	s.rows.Range(func(id int, row store.CacheRow) bool {
		if match(row) {
			ids = append(ids, id)
		}
		return true
	})

	deleted := 0
	for _, id := range ids {
		s.rows.Compute(id, func(old store.CacheRow, loaded bool) (store.CacheRow, bool) {
			if !loaded {
				// deleting an absent key is a no-op; returning false would insert old
				return old, true
			}
			remove := match(old)
			if remove {
				deleted++
			}
			return old, remove
		})
	}
	return deleted, nil
}
