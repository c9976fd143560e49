package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-catalog-cache/pkg/testsupport"
	"github.com/goliatone/go-catalog-cache/store"
	"github.com/goliatone/go-catalog-cache/store/sqlstore"
	"github.com/goliatone/go-catalog-cache/store/storetest"
)

func openSQLite(t *testing.T, opts ...sqlstore.Option) *sqlstore.Store {
	t.Helper()

	s, err := sqlstore.Open(context.Background(), sqlstore.Config{
		Driver: sqlstore.DriverSQLite,
		DSN:    testsupport.TempDBPath(t),
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return openSQLite(t) })
}

func TestRowsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	cfg := sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: testsupport.TempDBPath(t)}

	first, err := sqlstore.Open(ctx, cfg)
	require.NoError(t, err)
	want := storetest.Row(25, "pikachu", "electric", 35, 55, 40, 1_700_000_000_000)
	require.NoError(t, first.Upsert(ctx, want))
	require.NoError(t, first.Close())

	second, err := sqlstore.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.Get(ctx, 25)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Types, got.Types)
	assert.Equal(t, want.Stats, got.Stats)
	assert.Equal(t, want.FetchedAt, got.FetchedAt)
}

func TestCaseSensitiveSearch(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, storetest.Row(1, "Mr-Mime", "psychic", 40, 45, 65, 1)))
	require.NoError(t, s.Upsert(ctx, storetest.Row(2, "mime-jr", "psychic", 20, 25, 45, 1)))

	rows, err := s.SearchByName(ctx, "Mime", false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].ID)

	rows, err = s.SearchByName(ctx, "Mime", true)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCaseInsensitiveSearchFoldsASCIIOnly(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, storetest.Row(133, "Évoli", "normal", 55, 55, 50, 1)))

	rows, err := s.SearchByName(ctx, "VOLI", true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 133, rows[0].ID)

	rows, err = s.SearchByName(ctx, "évoli", true)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLikeWildcardsAreLiteral(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, storetest.Row(1, "porygon_z", "normal", 85, 80, 70, 1)))
	require.NoError(t, s.Upsert(ctx, storetest.Row(2, "porygonz", "normal", 85, 80, 70, 1)))

	rows, err := s.SearchByName(ctx, "n_z", true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].ID)
}

func TestQueriesAreTraced(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := openSQLite(t, sqlstore.WithLogger(zap.New(core)))

	_, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, logs.FilterMessage("sql query").Len())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, sqlstore.DefaultConfig().Validate())
	assert.Error(t, sqlstore.Config{Driver: "mysql", DSN: "x"}.Validate())
	assert.Error(t, sqlstore.Config{Driver: sqlstore.DriverSQLite}.Validate())

	_, err := sqlstore.Open(context.Background(), sqlstore.Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}
