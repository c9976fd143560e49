package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-cache/store"
	"github.com/goliatone/go-catalog-cache/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestConcurrentUpsertKeepsOneRowPerID(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(hp int) {
			defer wg.Done()
			_ = s.Upsert(ctx, storetest.Row(1, "bulbasaur", "grass", hp, 1, 1, int64(hp)))
		}(i)
	}
	wg.Wait()

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	row, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(row.HP), row.FetchedAt)
}

func TestCanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Page(ctx, 0, 20)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Upsert(ctx, storetest.Row(1, "a", "b", 1, 1, 1, 1)), context.Canceled)
}

func TestSearchFoldsNonASCII(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, storetest.Row(133, "Évoli", "normal", 55, 55, 50, 1)))

	rows, err := s.SearchByName(ctx, "évoli", true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 133, rows[0].ID)

	rows, err = s.SearchByName(ctx, "évoli", false)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReturnedRowsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, storetest.Row(1, "bulbasaur", "grass", 45, 49, 49, 1)))

	row, err := s.Get(ctx, 1)
	require.NoError(t, err)
	row.HP = 999

	again, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 45, again.HP)
}
