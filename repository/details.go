package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/mapper"
	"github.com/goliatone/go-catalog-cache/pkg/failure"
	"github.com/goliatone/go-catalog-cache/record"
	"github.com/goliatone/go-catalog-cache/store"
)

// GetRecordDetails fetches record id from the catalog and caches it. When
// the catalog is unreachable, times out, errors or does not know the id, the
// cached copy is returned instead.
func (r *Repository) GetRecordDetails(ctx context.Context, id int) Result[record.Record] {
	if id <= 0 {
		return Failure[record.Record](failure.ErrInvalidArgument.WithMessage("id must be positive"))
	}

	rec, err := r.fetchDetail(ctx, id)
	if err == nil {
		r.save(ctx, rec)
		return Success(rec)
	}
	if canceled(ctx, err) {
		return Failure[record.Record](failure.ErrCanceled.WithInternal(err))
	}
	if !unavailable(err) {
		return Failure[record.Record](err)
	}

	r.fallback("details", err)
	row, serr := r.store.Get(ctx, id)
	return r.fromRow(ctx, row, serr, err, fmt.Sprintf("record %d", id))
}

// GetRecordByReference resolves a listing reference. Offline references are
// answered from the cache only.
func (r *Repository) GetRecordByReference(ctx context.Context, ref string) Result[record.Record] {
	id, err := mapper.ExtractIDFromReference(ref)
	if err != nil {
		return Failure[record.Record](err)
	}
	if !mapper.IsOfflineReference(ref) {
		return r.GetRecordDetails(ctx, id)
	}

	row, serr := r.store.Get(ctx, id)
	return r.fromRow(ctx, row, serr, nil, ref)
}

// GetRecordDetailsByName looks a record up by exact name. The catalog is
// asked first when the client supports name lookups.
func (r *Repository) GetRecordDetailsByName(ctx context.Context, name string) Result[record.Record] {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Failure[record.Record](failure.ErrInvalidArgument.WithMessage("name must not be blank"))
	}

	var cause error = failure.ErrNotFound.WithMessage("catalog client has no name lookup")
	if nf, ok := r.client.(catalog.NameFetcher); ok {
		reqCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
		dto, err := nf.FetchByName(reqCtx, name)
		cancel()
		if err == nil {
			rec := mapper.ToDomain(dto)
			r.save(ctx, rec)
			return Success(rec)
		}
		if canceled(ctx, err) {
			return Failure[record.Record](failure.ErrCanceled.WithInternal(err))
		}
		if !unavailable(err) {
			return Failure[record.Record](err)
		}
		r.fallback("details_by_name", err)
		cause = err
	}

	row, serr := r.store.GetByName(ctx, name)
	return r.fromRow(ctx, row, serr, cause, name)
}

// fromRow turns a cache lookup into a result. A missing or undecodable row
// is NotFoundAnywhere.
func (r *Repository) fromRow(ctx context.Context, row *store.CacheRow, serr, cause error, what string) Result[record.Record] {
	if serr != nil {
		return Failure[record.Record](storageFailure(ctx, "read", serr))
	}

	notFound := failure.ErrNotFoundAnywhere.WithMessage(what + " not found upstream or in cache")
	if row == nil {
		return Failure[record.Record](notFound.WithInternal(cause))
	}

	rec, err := mapper.FromCacheRow(*row)
	if err != nil {
		r.log.Warn("cached row is corrupt", zap.Int("id", row.ID), zap.Error(err))
		return Failure[record.Record](notFound.WithInternal(errors.Join(cause, err)))
	}
	return Success(rec)
}

// GetRecordType returns the first type name of record id. Answers are
// memoised; the cache store is consulted before the catalog.
func (r *Repository) GetRecordType(ctx context.Context, id int) Result[string] {
	if id <= 0 {
		return Failure[string](failure.ErrInvalidArgument.WithMessage("id must be positive"))
	}

	key := r.keys.SerializeKey(methodRecordType, id)
	typeName, err := cache.GetOrFetch(ctx, r.memo, key, func(ctx context.Context) (string, error) {
		return r.lookupType(ctx, id)
	})
	if err != nil {
		return Failure[string](err)
	}
	return Success(typeName)
}

func (r *Repository) lookupType(ctx context.Context, id int) (string, error) {
	row, err := r.store.Get(ctx, id)
	if err != nil {
		return "", storageFailure(ctx, "read", err)
	}
	if row != nil {
		if rec, derr := mapper.FromCacheRow(*row); derr == nil && rec.PrimaryType() != "" {
			return rec.PrimaryType(), nil
		}
	}

	rec, err := r.fetchDetail(ctx, id)
	if err != nil {
		if canceled(ctx, err) {
			return "", failure.ErrCanceled.WithInternal(err)
		}
		return "", failure.ErrNotFoundAnywhere.WithMessage(fmt.Sprintf("type of record %d unknown", id)).WithInternal(err)
	}
	r.save(ctx, rec)

	if rec.PrimaryType() == "" {
		return "", failure.ErrNotFoundAnywhere.WithMessage(fmt.Sprintf("record %d has no type", id))
	}
	return rec.PrimaryType(), nil
}
