package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/pkg/failure"
)

var (
	_ catalog.Client      = (*FakeClient)(nil)
	_ catalog.NameFetcher = (*FakeClient)(nil)
)

// FakeClient is an in-memory catalog.Client that records every call.
type FakeClient struct {
	mu       sync.Mutex
	calls    []string
	pages    map[int]catalog.PageDTO
	records  map[int]catalog.RecordDTO
	pageErr  error
	fetchErr error
	idErrs   map[int]error
	// OnFetchByID, when set, runs before a detail lookup is answered.
	OnFetchByID func(ctx context.Context, id int)
}

// NewFakeClient returns an empty fake.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		pages:   map[int]catalog.PageDTO{},
		records: map[int]catalog.RecordDTO{},
		idErrs:  map[int]error{},
	}
}

// SetPage registers the page answered for offset.
func (f *FakeClient) SetPage(offset int, page catalog.PageDTO) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[offset] = page
}

// AddRecords registers detail records.
func (f *FakeClient) AddRecords(records ...catalog.RecordDTO) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range records {
		f.records[rec.ID] = rec
	}
}

// FailPages makes every FetchPage call return err.
func (f *FakeClient) FailPages(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageErr = err
}

// FailDetails makes every FetchByID and FetchByName call return err.
func (f *FakeClient) FailDetails(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

// FailID makes detail lookups for id return err.
func (f *FakeClient) FailID(id int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idErrs[id] = err
}

// FailAll makes every call return err.
func (f *FakeClient) FailAll(err error) {
	f.FailPages(err)
	f.FailDetails(err)
}

func (f *FakeClient) recordCall(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

// Calls returns a copy of the recorded calls.
func (f *FakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount counts recorded calls whose name starts with prefix.
func (f *FakeClient) CallCount(prefix string) int {
	n := 0
	for _, call := range f.Calls() {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

// ClearCalls forgets the recorded calls.
func (f *FakeClient) ClearCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeClient) FetchPage(ctx context.Context, offset, limit int) (catalog.PageDTO, error) {
	f.recordCall(fmt.Sprintf("FetchPage:%d:%d", offset, limit))

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pageErr != nil {
		return catalog.PageDTO{}, f.pageErr
	}
	if err := ctx.Err(); err != nil {
		return catalog.PageDTO{}, failure.From(err)
	}
	page, ok := f.pages[offset]
	if !ok {
		return catalog.PageDTO{}, nil
	}
	return page, nil
}

func (f *FakeClient) FetchByID(ctx context.Context, id int) (catalog.RecordDTO, error) {
	f.recordCall(fmt.Sprintf("FetchByID:%d", id))
	if hook := f.OnFetchByID; hook != nil {
		hook(ctx, id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookup(ctx, id)
}

func (f *FakeClient) FetchByName(ctx context.Context, name string) (catalog.RecordDTO, error) {
	f.recordCall("FetchByName:" + name)

	f.mu.Lock()
	defer f.mu.Unlock()
	for id, rec := range f.records {
		if rec.Name == name {
			return f.lookup(ctx, id)
		}
	}
	if f.fetchErr != nil {
		return catalog.RecordDTO{}, f.fetchErr
	}
	return catalog.RecordDTO{}, failure.ErrNotFound
}

func (f *FakeClient) lookup(ctx context.Context, id int) (catalog.RecordDTO, error) {
	if f.fetchErr != nil {
		return catalog.RecordDTO{}, f.fetchErr
	}
	if err, ok := f.idErrs[id]; ok {
		return catalog.RecordDTO{}, err
	}
	if err := ctx.Err(); err != nil {
		return catalog.RecordDTO{}, failure.From(err)
	}
	rec, ok := f.records[id]
	if !ok {
		return catalog.RecordDTO{}, failure.ErrNotFound
	}
	return rec, nil
}
