package cachedstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/store"
	"github.com/goliatone/go-catalog-cache/store/cachedstore"
	"github.com/goliatone/go-catalog-cache/store/memstore"
	"github.com/goliatone/go-catalog-cache/store/storetest"
)

// countingStore records how many reads reach the wrapped store.
type countingStore struct {
	store.Store
	mu    sync.Mutex
	reads map[string]int
	err   error
}

func newCountingStore() *countingStore {
	return &countingStore{Store: memstore.New(), reads: map[string]int{}}
}

func (s *countingStore) hit(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[method]++
	return s.err
}

func (s *countingStore) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[method]
}

func (s *countingStore) Get(ctx context.Context, id int) (*store.CacheRow, error) {
	if err := s.hit("Get"); err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, id)
}

func (s *countingStore) Page(ctx context.Context, offset, limit int) ([]store.CacheRow, error) {
	if err := s.hit("Page"); err != nil {
		return nil, err
	}
	return s.Store.Page(ctx, offset, limit)
}

func (s *countingStore) Filter(ctx context.Context, f store.Filter) ([]store.CacheRow, error) {
	if err := s.hit("Filter"); err != nil {
		return nil, err
	}
	return s.Store.Filter(ctx, f)
}

func (s *countingStore) Count(ctx context.Context) (int, error) {
	if err := s.hit("Count"); err != nil {
		return 0, err
	}
	return s.Store.Count(ctx)
}

func newMemo(t *testing.T) cache.CacheService {
	t.Helper()
	svc, err := cache.NewCacheService(cache.DefaultConfig())
	require.NoError(t, err)
	return svc
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return cachedstore.New(memstore.New(), newMemo(t))
	})
}

func TestReadsAreMemoized(t *testing.T) {
	ctx := context.Background()
	base := newCountingStore()
	st := cachedstore.New(base, newMemo(t))

	require.NoError(t, st.Upsert(ctx, storetest.Row(1, "bulbasaur", "grass", 45, 49, 49, 1)))

	for i := 0; i < 3; i++ {
		row, err := st.Get(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, "bulbasaur", row.Name)

		rows, err := st.Page(ctx, 0, 20)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		n, err := st.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	assert.Equal(t, 1, base.count("Get"))
	assert.Equal(t, 1, base.count("Page"))
	assert.Equal(t, 1, base.count("Count"))

	_, err := st.Page(ctx, 20, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, base.count("Page"), "different arguments use a different key")
}

func TestMissingRowIsMemoizedUntilUpsert(t *testing.T) {
	ctx := context.Background()
	base := newCountingStore()
	st := cachedstore.New(base, newMemo(t))

	row, err := st.Get(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, row)
	_, _ = st.Get(ctx, 4)
	assert.Equal(t, 1, base.count("Get"))

	require.NoError(t, st.Upsert(ctx, storetest.Row(4, "charmander", "fire", 39, 52, 43, 1)))

	row, err = st.Get(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 2, base.count("Get"))
}

func TestUpsertInvalidatesListReads(t *testing.T) {
	ctx := context.Background()
	base := newCountingStore()
	st := cachedstore.New(base, newMemo(t))

	require.NoError(t, st.Upsert(ctx, storetest.Row(1, "bulbasaur", "grass", 45, 49, 49, 1)))
	require.NoError(t, st.Upsert(ctx, storetest.Row(7, "squirtle", "water", 44, 48, 65, 1)))

	fire := "fire"
	rows, err := st.Filter(ctx, store.Filter{Type: &fire})
	require.NoError(t, err)
	assert.Empty(t, rows)

	row, err := st.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, row)

	require.NoError(t, st.Upsert(ctx, storetest.Row(4, "charmander", "fire", 39, 52, 43, 1)))

	rows, err = st.Filter(ctx, store.Filter{Type: &fire})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].ID)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = st.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, base.count("Get"), "upsert of another id keeps Get(7)")
}

func TestEvictionInvalidatesEverything(t *testing.T) {
	ctx := context.Background()
	base := newCountingStore()
	st := cachedstore.New(base, newMemo(t))

	require.NoError(t, st.Upsert(ctx, storetest.Row(1, "bulbasaur", "grass", 45, 49, 49, 100)))
	require.NoError(t, st.Upsert(ctx, storetest.Row(4, "charmander", "fire", 39, 52, 43, 300)))

	_, err := st.Get(ctx, 1)
	require.NoError(t, err)

	n, err := st.EvictOlderThan(ctx, 50)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, _ = st.Get(ctx, 1)
	assert.Equal(t, 1, base.count("Get"), "nothing evicted, nothing invalidated")

	n, err = st.EvictOlderThan(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	row, err := st.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, row)

	n, err = st.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestErrorsAreNotMemoized(t *testing.T) {
	ctx := context.Background()
	base := newCountingStore()
	st := cachedstore.New(base, newMemo(t))
	require.NoError(t, st.Upsert(ctx, storetest.Row(1, "bulbasaur", "grass", 45, 49, 49, 1)))

	errDisk := errors.New("disk")
	base.err = errDisk
	_, err := st.Get(ctx, 1)
	assert.ErrorIs(t, err, errDisk)

	base.err = nil
	row, err := st.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 2, base.count("Get"))
}

func TestReturnedRowsAreCopies(t *testing.T) {
	ctx := context.Background()
	st := cachedstore.New(memstore.New(), newMemo(t))
	require.NoError(t, st.Upsert(ctx, storetest.Row(1, "bulbasaur", "grass", 45, 49, 49, 1)))

	row, err := st.Get(ctx, 1)
	require.NoError(t, err)
	row.Name = "mutated"

	rows, err := st.Page(ctx, 0, 10)
	require.NoError(t, err)
	rows[0].Name = "mutated"

	row, err = st.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "bulbasaur", row.Name)

	rows, err = st.Page(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "bulbasaur", rows[0].Name)
}
