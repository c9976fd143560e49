package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-catalog-cache/pkg/failure"
	"github.com/goliatone/go-catalog-cache/record"
	"github.com/goliatone/go-catalog-cache/repository"
)

// Catalog is the repository surface the HTTP API serves.
type Catalog interface {
	ListRecords(ctx context.Context, page int, query string) repository.Result[record.ListingPage]
	GetRecordDetails(ctx context.Context, id int) repository.Result[record.Record]
	GetRecordByReference(ctx context.Context, ref string) repository.Result[record.Record]
	GetRecordDetailsByName(ctx context.Context, name string) repository.Result[record.Record]
	GetRecordType(ctx context.Context, id int) repository.Result[string]
	GetFilteredRecords(ctx context.Context, opts repository.FilterOptions) repository.Result[record.ListingPage]
	ClearStaleCache(ctx context.Context) repository.Result[int]
	ClearCache(ctx context.Context) repository.Result[int]
	CachedCount(ctx context.Context) repository.Result[int]
}

var _ Catalog = (*repository.Repository)(nil)

type handler struct {
	catalog  Catalog
	pageSize int
}

func (h *handler) list(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, failure.ErrInvalidArgument.WithMessage("page must be an integer"))
			return
		}
		page = n
	}

	res := h.catalog.ListRecords(c.Request.Context(), page, c.Query("q"))
	if !res.IsSuccess() {
		fail(c, res.Err())
		return
	}
	listing := res.Value()
	meta := &Meta{Total: listing.TotalCount, Source: string(listing.Source)}
	if strings.TrimSpace(c.Query("q")) == "" {
		meta.Page = page
		meta.PerPage = h.pageSize
	}
	successWithMeta(c, http.StatusOK, listing, meta)
}

func (h *handler) show(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	respond(c, h.catalog.GetRecordDetails(c.Request.Context(), id))
}

func (h *handler) byReference(c *gin.Context) {
	respond(c, h.catalog.GetRecordByReference(c.Request.Context(), c.Query("ref")))
}

func (h *handler) byName(c *gin.Context) {
	respond(c, h.catalog.GetRecordDetailsByName(c.Request.Context(), c.Param("name")))
}

func (h *handler) recordType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res := h.catalog.GetRecordType(c.Request.Context(), id)
	if !res.IsSuccess() {
		fail(c, res.Err())
		return
	}
	success(c, http.StatusOK, gin.H{"id": id, "type": res.Value()})
}

func (h *handler) filter(c *gin.Context) {
	opts := repository.FilterOptions{OrderBy: c.Query("order_by")}
	if t, ok := c.GetQuery("type"); ok {
		opts.Type = &t
	}

	for param, dst := range map[string]**int{
		"min_hp":      &opts.MinHP,
		"min_attack":  &opts.MinAttack,
		"min_defense": &opts.MinDefense,
	} {
		raw, ok := c.GetQuery(param)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, failure.ErrInvalidArgument.WithMessage(param+" must be an integer"))
			return
		}
		*dst = &n
	}

	res := h.catalog.GetFilteredRecords(c.Request.Context(), opts)
	if !res.IsSuccess() {
		fail(c, res.Err())
		return
	}
	listing := res.Value()
	successWithMeta(c, http.StatusOK, listing, &Meta{Total: listing.TotalCount, Source: string(listing.Source)})
}

func (h *handler) evict(c *gin.Context) {
	res := h.catalog.ClearStaleCache(c.Request.Context())
	if !res.IsSuccess() {
		fail(c, res.Err())
		return
	}
	success(c, http.StatusOK, gin.H{"deleted": res.Value()})
}

func (h *handler) clear(c *gin.Context) {
	res := h.catalog.ClearCache(c.Request.Context())
	if !res.IsSuccess() {
		fail(c, res.Err())
		return
	}
	success(c, http.StatusOK, gin.H{"deleted": res.Value()})
}

func (h *handler) health(c *gin.Context) {
	res := h.catalog.CachedCount(c.Request.Context())
	if !res.IsSuccess() {
		c.JSON(http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   &ErrorInfo{Code: "UNHEALTHY", Message: res.Err().Error()},
		})
		return
	}
	success(c, http.StatusOK, gin.H{"status": "ok", "cached_records": res.Value()})
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, failure.ErrInvalidArgument.WithMessage("id must be an integer"))
		return 0, false
	}
	return id, true
}

func respond[T any](c *gin.Context, res repository.Result[T]) {
	if !res.IsSuccess() {
		fail(c, res.Err())
		return
	}
	success(c, http.StatusOK, res.Value())
}
