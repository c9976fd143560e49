package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/mapper"
	"github.com/goliatone/go-catalog-cache/pkg/failure"
	"github.com/goliatone/go-catalog-cache/pkg/testsupport"
	"github.com/goliatone/go-catalog-cache/record"
	"github.com/goliatone/go-catalog-cache/repository"
	"github.com/goliatone/go-catalog-cache/store/memstore"
	"github.com/goliatone/go-catalog-cache/store/storetest"
)

func TestGetRecordDetails_NetworkThenCacheFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.AddRecords(charmander)

	first := f.repo.GetRecordDetails(ctx, 4)
	require.True(t, first.IsSuccess())
	assert.Equal(t, mapper.ToDomain(charmander), first.Value())

	f.client.FailAll(failure.ErrNetworkUnavailable)
	second := f.repo.GetRecordDetails(ctx, 4)
	require.True(t, second.IsSuccess(), "got %v", second.Err())
	assert.Equal(t, first.Value(), second.Value())
}

func TestGetRecordDetails_RejectedRequestDoesNotFallBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.AddRecords(charmander)
	require.True(t, f.repo.GetRecordDetails(ctx, 4).IsSuccess())

	f.client.FailID(4, failure.ErrInvalidArgument)
	res := f.repo.GetRecordDetails(ctx, 4)
	assert.Equal(t, failure.KindInvalidArgument, res.Kind())

	f.client.FailID(4, failure.ErrNotFound)
	res = f.repo.GetRecordDetails(ctx, 4)
	require.True(t, res.IsSuccess(), "upstream 404 is answered from the cache")
	assert.Equal(t, "charmander", res.Value().Name)
}

func TestGetRecordDetails_UpsertIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.AddRecords(charmander)

	require.True(t, f.repo.GetRecordDetails(ctx, 4).IsSuccess())
	before, err := f.store.Get(ctx, 4)
	require.NoError(t, err)

	require.True(t, f.repo.GetRecordDetails(ctx, 4).IsSuccess())
	after, err := f.store.Get(ctx, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, f.count(t))
	assert.Equal(t, *before, *after)
}

func TestGetRecordDetails_NotFoundAnywhere(t *testing.T) {
	f := newFixture(t)

	res := f.repo.GetRecordDetails(context.Background(), 151)
	assert.Equal(t, failure.KindNotFoundAnywhere, res.Kind())
	assert.True(t, failure.IsKind(res.Err().Internal, failure.KindNotFound))
}

func TestGetRecordDetails_CorruptRowIsAMiss(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	row := storetest.Row(9, "blastoise", "water", 79, 83, 100, 1)
	row.Stats = "{broken"
	require.NoError(t, f.store.Upsert(ctx, row))
	f.client.FailAll(failure.ErrTimeout)

	res := f.repo.GetRecordDetails(ctx, 9)
	assert.Equal(t, failure.KindNotFoundAnywhere, res.Kind())
}

func TestGetRecordDetails_StorageFailureOnFallback(t *testing.T) {
	f := newFixtureWithStore(t, &flakyStore{Store: memstore.New(), readErr: errDisk})
	f.client.FailAll(failure.ErrNetworkUnavailable)

	res := f.repo.GetRecordDetails(context.Background(), 1)
	assert.Equal(t, failure.KindStorageIOError, res.Kind())
}

func TestGetRecordDetails_Canceled(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Upsert(context.Background(), storetest.Row(4, "charmander", "fire", 39, 52, 43, 1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.repo.GetRecordDetails(ctx, 4)
	assert.Equal(t, failure.KindCanceled, res.Kind())
}

func TestGetRecordDetails_InvalidID(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, failure.KindInvalidArgument, f.repo.GetRecordDetails(context.Background(), 0).Kind())
	assert.Empty(t, f.client.Calls())
}

func TestGetRecordByReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.AddRecords(squirtle)

	res := f.repo.GetRecordByReference(ctx, testsupport.Ref(7))
	require.True(t, res.IsSuccess())
	assert.Equal(t, "squirtle", res.Value().Name)
	assert.Equal(t, 1, f.client.CallCount("FetchByID:7"))

	f.client.ClearCalls()
	res = f.repo.GetRecordByReference(ctx, "offline/7")
	require.True(t, res.IsSuccess())
	assert.Equal(t, "squirtle", res.Value().Name)

	res = f.repo.GetRecordByReference(ctx, "offline/8")
	assert.Equal(t, failure.KindNotFoundAnywhere, res.Kind())
	assert.Empty(t, f.client.Calls(), "offline references never reach the network")

	res = f.repo.GetRecordByReference(ctx, "https://x/pokemon/squirtle/")
	assert.Equal(t, failure.KindInvalidReference, res.Kind())
}

func TestGetRecordDetailsByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.AddRecords(charizard)

	res := f.repo.GetRecordDetailsByName(ctx, " Charizard ")
	require.True(t, res.IsSuccess())
	assert.Equal(t, 6, res.Value().ID)
	assert.Equal(t, 1, f.client.CallCount("FetchByName:charizard"))

	f.client.FailAll(failure.ErrNetworkUnavailable)
	res = f.repo.GetRecordDetailsByName(ctx, "charizard")
	require.True(t, res.IsSuccess())
	assert.Equal(t, 6, res.Value().ID)

	res = f.repo.GetRecordDetailsByName(ctx, "mewtwo")
	assert.Equal(t, failure.KindNotFoundAnywhere, res.Kind())

	res = f.repo.GetRecordDetailsByName(ctx, "   ")
	assert.Equal(t, failure.KindInvalidArgument, res.Kind())
}

func TestGetRecordDetailsByName_ClientWithoutNameLookup(t *testing.T) {
	fake := testsupport.NewFakeClient()
	st := memstore.New()
	repo, err := repository.New(struct{ catalog.Client }{fake}, st)
	require.NoError(t, err)

	require.NoError(t, st.Upsert(context.Background(), storetest.Row(25, "pikachu", "electric", 35, 55, 40, 1)))

	res := repo.GetRecordDetailsByName(context.Background(), "pikachu")
	require.True(t, res.IsSuccess())
	assert.Equal(t, 25, res.Value().ID)
	assert.Empty(t, fake.Calls())
}

func TestGetRecordType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.AddRecords(bulbasaur)

	res := f.repo.GetRecordType(ctx, 1)
	require.True(t, res.IsSuccess(), "got %v", res.Err())
	assert.Equal(t, "grass", res.Value())
	assert.Equal(t, 1, f.count(t))

	f.client.ClearCalls()
	assert.Equal(t, "grass", f.repo.GetRecordType(ctx, 1).Value())
	assert.Empty(t, f.client.Calls())

	t.Run("refetch invalidates memo", func(t *testing.T) {
		f.client.AddRecords(testsupport.NewRecordDTO(1, "bulbasaur", []string{"fire"}, 45, 49, 49))
		require.True(t, f.repo.GetRecordDetails(ctx, 1).IsSuccess())
		f.client.ClearCalls()

		assert.Equal(t, "fire", f.repo.GetRecordType(ctx, 1).Value())
		assert.Empty(t, f.client.Calls())
	})

	t.Run("served from cache store when offline", func(t *testing.T) {
		require.NoError(t, f.store.Upsert(ctx, storetest.Row(7, "squirtle", "water", 44, 48, 65, 1)))
		f.client.FailAll(failure.ErrNetworkUnavailable)

		assert.Equal(t, "water", f.repo.GetRecordType(ctx, 7).Value())
	})

	t.Run("unknown everywhere", func(t *testing.T) {
		res := f.repo.GetRecordType(ctx, 150)
		assert.Equal(t, failure.KindNotFoundAnywhere, res.Kind())
	})
}

// A cold list, then an offline list, detail, search and filter of the
// same record.
func TestBulbasaurEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var dto catalog.RecordDTO
	testsupport.LoadFixtureJSON(t, testsupport.FixturePath("bulbasaur.json"), &dto)
	f.client.AddRecords(dto)
	f.client.SetPage(0, catalog.PageDTO{
		Count:   1,
		Results: []catalog.PageItemDTO{{Name: "bulbasaur", URL: "https://pokeapi.co/api/v2/pokemon/1/"}},
	})

	online := f.repo.ListRecords(ctx, 1, "")
	require.True(t, online.IsSuccess())
	require.Len(t, online.Value().Items, 1)
	assert.Equal(t, "grass", *online.Value().Items[0].DerivedType)

	f.client.FailAll(failure.ErrNetworkUnavailable)

	offline := f.repo.ListRecords(ctx, 1, "")
	require.True(t, offline.IsSuccess())
	grass := "grass"
	assert.Equal(t, []record.ListingItem{{Name: "bulbasaur", Ref: "offline/1", DerivedType: &grass}}, offline.Value().Items)

	detail := f.repo.GetRecordByReference(ctx, offline.Value().Items[0].Ref)
	require.True(t, detail.IsSuccess())
	assert.Equal(t, mapper.ToDomain(dto), detail.Value())
	assert.Equal(t, 45, mapper.StatValue(detail.Value(), "hp"))

	search := f.repo.ListRecords(ctx, 1, "bulb")
	require.True(t, search.IsSuccess())
	assert.Len(t, search.Value().Items, 1)

	filtered := f.repo.GetFilteredRecords(ctx, repository.FilterOptions{Type: strPtr("grass")})
	require.True(t, filtered.IsSuccess())
	assert.Equal(t, "bulbasaur", filtered.Value().Items[0].Name)

	none := f.repo.GetFilteredRecords(ctx, repository.FilterOptions{Type: strPtr("fire")})
	assert.Equal(t, failure.KindNoMatchingRecords, none.Kind())
}
