package repository

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-catalog-cache/mapper"
	"github.com/goliatone/go-catalog-cache/pkg/failure"
	"github.com/goliatone/go-catalog-cache/pkg/metrics"
	"github.com/goliatone/go-catalog-cache/record"
	"github.com/goliatone/go-catalog-cache/store"
)

// ListRecords returns page (1-based) of the catalog. A query searches
// cached names instead and never reaches the network; a query made only of
// whitespace counts as absent. Page numbers whose offset does not fit in an
// int are rejected.
func (r *Repository) ListRecords(ctx context.Context, page int, query string) Result[record.ListingPage] {
	if page < 1 {
		return Failure[record.ListingPage](failure.ErrInvalidArgument.WithMessage("page must be 1 or greater"))
	}
	if page-1 > math.MaxInt/r.cfg.PageSize {
		return Failure[record.ListingPage](failure.ErrInvalidArgument.WithMessage(fmt.Sprintf("page %d is out of range", page)))
	}
	if q := strings.TrimSpace(query); q != "" {
		return r.searchCache(ctx, q)
	}

	offset := (page - 1) * r.cfg.PageSize
	dto, err := r.fetchPage(ctx, offset)
	if err != nil {
		if canceled(ctx, err) {
			return Failure[record.ListingPage](failure.ErrCanceled.WithInternal(err))
		}
		if !unavailable(err) {
			return Failure[record.ListingPage](err)
		}
		r.fallback("list", err)
		return r.cachedPage(ctx, offset, err)
	}

	items := make([]record.ListingItem, len(dto.Results))
	for i, res := range dto.Results {
		items[i] = record.ListingItem{Name: res.Name, Ref: res.URL}
	}
	r.enrich(ctx, items)

	if ctx.Err() != nil {
		return Failure[record.ListingPage](failure.ErrCanceled.WithInternal(ctx.Err()))
	}

	return Success(record.ListingPage{
		TotalCount:     dto.Count,
		NextCursor:     dto.Next,
		PreviousCursor: dto.Previous,
		Items:          items,
		Source:         record.SourceNetwork,
	})
}

// enrich fills DerivedType with one detail lookup per item, caching every
// record it receives. Item failures leave DerivedType nil.
func (r *Repository) enrich(ctx context.Context, items []record.ListingItem) {
	var g errgroup.Group
	g.SetLimit(r.cfg.EnrichConcurrency)

	for i := range items {
		item := &items[i]
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			id, err := mapper.ExtractIDFromReference(item.Ref)
			if err != nil {
				metrics.EnrichmentFailures.Inc()
				r.log.Warn("listing item has no usable reference", zap.String("ref", item.Ref), zap.Error(err))
				return nil
			}

			rec, err := r.fetchDetail(ctx, id)
			if err != nil {
				metrics.EnrichmentFailures.Inc()
				r.log.Debug("detail lookup failed", zap.Int("id", id), zap.Error(err))
				return nil
			}

			if t := rec.PrimaryType(); t != "" {
				item.DerivedType = &t
			}
			r.save(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Repository) cachedPage(ctx context.Context, offset int, cause error) Result[record.ListingPage] {
	rows, err := r.store.Page(ctx, offset, r.cfg.PageSize)
	if err != nil {
		return Failure[record.ListingPage](storageFailure(ctx, "page read", err))
	}

	items := r.decodeRows(rows)
	if len(items) == 0 {
		return Failure[record.ListingPage](failure.ErrNoCachedData.WithInternal(cause))
	}
	return Success(cachePage(items))
}

func (r *Repository) searchCache(ctx context.Context, query string) Result[record.ListingPage] {
	rows, err := r.store.SearchByName(ctx, query, true)
	if err != nil {
		return Failure[record.ListingPage](storageFailure(ctx, "search", err))
	}

	items := r.decodeRows(rows)
	if len(items) == 0 {
		return Failure[record.ListingPage](failure.ErrNoCachedData.WithMessage("no cached record matches " + query))
	}
	return Success(cachePage(items))
}

// FilterOptions narrows GetFilteredRecords. Nil and blank fields match
// everything; OrderBy is one of "", name, hp, attack, defense.
type FilterOptions struct {
	Type       *string
	MinHP      *int
	MinAttack  *int
	MinDefense *int
	OrderBy    string
}

// GetFilteredRecords filters the cache. It never reaches the network.
func (r *Repository) GetFilteredRecords(ctx context.Context, opts FilterOptions) Result[record.ListingPage] {
	order, err := store.ParseOrderBy(opts.OrderBy)
	if err != nil {
		return Failure[record.ListingPage](failure.ErrInvalidArgument.WithInternal(err))
	}

	f := store.Filter{
		MinHP:      opts.MinHP,
		MinAttack:  opts.MinAttack,
		MinDefense: opts.MinDefense,
		OrderBy:    order,
	}
	if opts.Type != nil {
		if t := strings.TrimSpace(*opts.Type); t != "" {
			f.Type = &t
		}
	}

	rows, err := r.store.Filter(ctx, f)
	if err != nil {
		return Failure[record.ListingPage](storageFailure(ctx, "filter", err))
	}

	items := r.decodeRows(rows)
	if len(items) == 0 {
		return Failure[record.ListingPage](failure.ErrNoMatchingRecords)
	}
	return Success(cachePage(items))
}
