package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/pkg/failure"
	"github.com/goliatone/go-catalog-cache/pkg/logger"
	"github.com/goliatone/go-catalog-cache/pkg/metrics"
)

var (
	_ Client      = (*HTTPClient)(nil)
	_ NameFetcher = (*HTTPClient)(nil)
)

// HTTPClient talks JSON over HTTP to the catalog service.
type HTTPClient struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	log       *zap.Logger
}

// Option customises the HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Its Timeout is kept
// as provided.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.log = l
		}
	}
}

// NewHTTPClient validates cfg and builds a client.
func NewHTTPClient(cfg Config, opts ...Option) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("catalog config: %w", err)
	}

	raw := cfg.BaseURL
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog config: base url: %w", err)
	}

	c := &HTTPClient{
		base:      base,
		http:      &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		log:       logger.WithModule("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchPage returns the listing page starting at offset.
func (c *HTTPClient) FetchPage(ctx context.Context, offset, limit int) (PageDTO, error) {
	var page PageDTO
	if offset < 0 || limit < 1 {
		return page, failure.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("fetch page: offset %d limit %d", offset, limit))
	}

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	err := c.get(ctx, "page", "pokemon", query, &page)
	return page, err
}

// FetchByID returns the full record for id.
func (c *HTTPClient) FetchByID(ctx context.Context, id int) (RecordDTO, error) {
	var rec RecordDTO
	if id < 1 {
		return rec, failure.ErrInvalidArgument.WithMessage(fmt.Sprintf("fetch record: id %d", id))
	}

	err := c.get(ctx, "detail", "pokemon/"+strconv.Itoa(id), nil, &rec)
	return rec, err
}

// FetchByName returns the full record for name. The catalog keys names in
// lower case.
func (c *HTTPClient) FetchByName(ctx context.Context, name string) (RecordDTO, error) {
	var rec RecordDTO
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return rec, failure.ErrInvalidArgument.WithMessage("fetch record: empty name")
	}

	err := c.get(ctx, "name", "pokemon/"+url.PathEscape(name), nil, &rec)
	return rec, err
}

func (c *HTTPClient) get(ctx context.Context, op, path string, query url.Values, dest any) (err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = string(failure.KindOf(err))
		}
		metrics.CatalogRequests.WithLabelValues(op, result).Inc()
	}()

	ref := path
	if len(query) > 0 {
		ref += "?" + query.Encode()
	}
	target, err := c.base.Parse(ref)
	if err != nil {
		return failure.ErrInvalidArgument.WithMessage("build catalog url").WithInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return failure.ErrInvalidArgument.WithMessage("build catalog request").WithInternal(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.log.Debug("catalog request", zap.String("op", op), zap.String("url", target.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return failure.ErrNotFound.WithMessage(fmt.Sprintf("catalog %s %s not found", op, path))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return failure.ServerError(resp.StatusCode, fmt.Sprintf("catalog %s %s", op, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return classifyTransportError(ctx, ctxErr)
		}
		return failure.ServerError(resp.StatusCode, fmt.Sprintf("decode catalog %s response", op)).WithInternal(err)
	}
	return nil
}

func classifyTransportError(ctx context.Context, err error) *failure.Error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return failure.ErrCanceled.WithInternal(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failure.ErrTimeout.WithInternal(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failure.ErrTimeout.WithInternal(err)
	}
	return failure.ErrNetworkUnavailable.WithInternal(err)
}
