// Package catalog is the boundary to the remote creature catalog.
//
// A Client performs single-shot calls: no retries, no caching and no
// enrichment happen here. Every failure is a *failure.Error classified as
// NetworkUnavailable, Timeout, ServerError (with the upstream status),
// NotFound or Canceled.
package catalog

import "context"

// Client fetches listing pages and full records from the catalog.
type Client interface {
	FetchPage(ctx context.Context, offset, limit int) (PageDTO, error)
	FetchByID(ctx context.Context, id int) (RecordDTO, error)
}

// NameFetcher is implemented by clients that can look a record up by name.
type NameFetcher interface {
	FetchByName(ctx context.Context, name string) (RecordDTO, error)
}
