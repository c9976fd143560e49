// Package storetest holds the behavioural contract every store.Store
// implementation must satisfy.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-cache/store"
)

// Factory returns a fresh, empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) store.Store

// Row builds a cache row with a single type and the given derived stats.
func Row(id int, name, typeName string, hp, attack, defense int, fetchedAt int64) store.CacheRow {
	return store.CacheRow{
		ID:             id,
		Name:           name,
		Height:         10,
		Weight:         100,
		BaseExperience: 60,
		Types:          fmt.Sprintf(`[{"slot":1,"name":%q,"ref":"https://x/type/%d/"}]`, typeName, id),
		Stats:          fmt.Sprintf(`[{"base_value":%d,"effort":0,"name":"hp","ref":""}]`, hp),
		Sprites:        `{}`,
		Abilities:      `[]`,
		HP:             hp,
		Attack:         attack,
		Defense:        defense,
		FetchedAt:      fetchedAt,
	}
}

func ids(rows []store.CacheRow) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// Run executes the contract against stores produced by factory.
func Run(t *testing.T, factory Factory) {
	now := time.Now().UnixMilli()

	seed := func(t *testing.T, s store.Store) {
		t.Helper()
		ctx := context.Background()
		for _, row := range []store.CacheRow{
			Row(6, "charizard", "fire", 78, 84, 78, now),
			Row(1, "bulbasaur", "grass", 45, 49, 49, now),
			Row(4, "charmander", "fire", 39, 52, 43, now),
			Row(7, "squirtle", "water", 44, 48, 65, now),
			Row(5, "charmeleon", "fire", 58, 64, 58, now),
		} {
			require.NoError(t, s.Upsert(ctx, row))
		}
	}

	t.Run("get missing returns nil", func(t *testing.T) {
		s := factory(t)
		row, err := s.Get(context.Background(), 42)
		require.NoError(t, err)
		assert.Nil(t, row)

		row, err = s.GetByName(context.Background(), "missingno")
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("upsert is last write wins", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()

		require.NoError(t, s.Upsert(ctx, Row(1, "bulbasaur", "grass", 45, 49, 49, now-1000)))
		second := Row(1, "bulbasaur", "grass", 50, 55, 60, now)
		require.NoError(t, s.Upsert(ctx, second))

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		got, err := s.Get(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, second.HP, got.HP)
		assert.Equal(t, second.Attack, got.Attack)
		assert.Equal(t, second.Defense, got.Defense)
		assert.Equal(t, second.FetchedAt, got.FetchedAt)
		assert.Equal(t, second.Types, got.Types)
	})

	t.Run("get by exact name", func(t *testing.T) {
		s := factory(t)
		seed(t, s)

		got, err := s.GetByName(context.Background(), "charmander")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 4, got.ID)

		got, err = s.GetByName(context.Background(), "charm")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("search by name substring", func(t *testing.T) {
		s := factory(t)
		seed(t, s)
		ctx := context.Background()

		rows, err := s.SearchByName(ctx, "CHAR", true)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 5, 6}, ids(rows))

		rows, err = s.SearchByName(ctx, "saur", true)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, ids(rows))

		rows, err = s.SearchByName(ctx, "%", true)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("page is id ordered", func(t *testing.T) {
		s := factory(t)
		seed(t, s)
		ctx := context.Background()

		rows, err := s.Page(ctx, 0, 3)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 4, 5}, ids(rows))

		rows, err = s.Page(ctx, 3, 3)
		require.NoError(t, err)
		assert.Equal(t, []int{6, 7}, ids(rows))

		rows, err = s.Page(ctx, 20, 20)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("filter by type is exclusive", func(t *testing.T) {
		s := factory(t)
		seed(t, s)

		rows, err := s.Filter(context.Background(), store.Filter{Type: ptr("fire"), OrderBy: store.OrderHP})
		require.NoError(t, err)
		assert.Equal(t, []int{6, 5, 4}, ids(rows))

		rows, err = s.Filter(context.Background(), store.Filter{Type: ptr("fire"), OrderBy: store.OrderName})
		require.NoError(t, err)
		assert.Equal(t, []int{4, 5, 6}, ids(rows))

		rows, err = s.Filter(context.Background(), store.Filter{Type: ptr("fire")})
		require.NoError(t, err)
		assert.Equal(t, []int{4, 5, 6}, ids(rows))
	})

	t.Run("filter predicates are anded", func(t *testing.T) {
		s := factory(t)
		seed(t, s)
		ctx := context.Background()

		rows, err := s.Filter(ctx, store.Filter{MinHP: ptr(44), MinDefense: ptr(49), OrderBy: store.OrderDefense})
		require.NoError(t, err)
		assert.Equal(t, []int{6, 7, 5, 1}, ids(rows))

		rows, err = s.Filter(ctx, store.Filter{Type: ptr("fire"), MinAttack: ptr(60), OrderBy: store.OrderAttack})
		require.NoError(t, err)
		assert.Equal(t, []int{6, 5}, ids(rows))

		rows, err = s.Filter(ctx, store.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 4, 5, 6, 7}, ids(rows))

		rows, err = s.Filter(ctx, store.Filter{Type: ptr("dragon")})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("type filter matches anywhere in the types blob", func(t *testing.T) {
		s := factory(t)
		seed(t, s)

		rows, err := s.Filter(context.Background(), store.Filter{Type: ptr("SLOT")})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 4, 5, 6, 7}, ids(rows))
	})

	t.Run("evict older than cutoff", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()

		stale := now - (25 * time.Hour).Milliseconds()
		fresh := now - (23 * time.Hour).Milliseconds()
		require.NoError(t, s.Upsert(ctx, Row(1, "bulbasaur", "grass", 45, 49, 49, stale)))
		require.NoError(t, s.Upsert(ctx, Row(2, "ivysaur", "grass", 60, 62, 63, fresh)))

		deleted, err := s.EvictOlderThan(ctx, now-(24*time.Hour).Milliseconds())
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		row, err := s.Get(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, row)

		row, err = s.Get(ctx, 2)
		require.NoError(t, err)
		assert.NotNil(t, row)
	})

	t.Run("clear removes everything", func(t *testing.T) {
		s := factory(t)
		seed(t, s)
		ctx := context.Background()

		deleted, err := s.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, deleted)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
