package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/pkg/testsupport"
	"github.com/goliatone/go-catalog-cache/repository"
	"github.com/goliatone/go-catalog-cache/store"
	"github.com/goliatone/go-catalog-cache/store/memstore"
)

type fixture struct {
	client *testsupport.FakeClient
	store  store.Store
	repo   *repository.Repository
	now    time.Time
}

func newFixture(t *testing.T, opts ...repository.Option) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memstore.New(), opts...)
}

func newFixtureWithStore(t *testing.T, st store.Store, opts ...repository.Option) *fixture {
	t.Helper()

	f := &fixture{
		client: testsupport.NewFakeClient(),
		store:  st,
		now:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	opts = append([]repository.Option{repository.WithNow(func() time.Time { return f.now })}, opts...)

	repo, err := repository.New(f.client, f.store, opts...)
	require.NoError(t, err)
	f.repo = repo
	return f
}

// seedNetwork registers records on the fake client and a first page listing them.
func (f *fixture) seedNetwork(records ...catalog.RecordDTO) {
	f.client.AddRecords(records...)
	f.client.SetPage(0, testsupport.NewPageDTO(len(records), records...))
}

func (f *fixture) count(t *testing.T) int {
	t.Helper()
	n, err := f.store.Count(context.Background())
	require.NoError(t, err)
	return n
}

var (
	bulbasaur  = testsupport.NewRecordDTO(1, "bulbasaur", []string{"grass", "poison"}, 45, 49, 49)
	charmander = testsupport.NewRecordDTO(4, "charmander", []string{"fire"}, 39, 52, 43)
	charmeleon = testsupport.NewRecordDTO(5, "charmeleon", []string{"fire"}, 58, 64, 58)
	charizard  = testsupport.NewRecordDTO(6, "charizard", []string{"fire", "flying"}, 78, 84, 78)
	squirtle   = testsupport.NewRecordDTO(7, "squirtle", []string{"water"}, 44, 48, 65)
)

// flakyStore wraps a store and fails the configured operations.
type flakyStore struct {
	store.Store
	upsertErr error
	readErr   error
	evictErr  error
}

func (s *flakyStore) Upsert(ctx context.Context, row store.CacheRow) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	return s.Store.Upsert(ctx, row)
}

func (s *flakyStore) Get(ctx context.Context, id int) (*store.CacheRow, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.Store.Get(ctx, id)
}

func (s *flakyStore) Page(ctx context.Context, offset, limit int) ([]store.CacheRow, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.Store.Page(ctx, offset, limit)
}

func (s *flakyStore) Filter(ctx context.Context, f store.Filter) ([]store.CacheRow, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.Store.Filter(ctx, f)
}

func (s *flakyStore) EvictOlderThan(ctx context.Context, cutoff int64) (int, error) {
	if s.evictErr != nil {
		return 0, s.evictErr
	}
	return s.Store.EvictOlderThan(ctx, cutoff)
}

var errDisk = errors.New("disk I/O error")

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
