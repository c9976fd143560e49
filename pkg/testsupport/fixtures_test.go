package testsupport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-catalog-cache/pkg/failure"
)

func TestLoadFixtureJSON(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "page.json")
	if err := os.WriteFile(testFile, []byte(`{"count": 3, "results": []}`), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	var result struct {
		Count int `json:"count"`
	}
	LoadFixtureJSON(t, testFile, &result)

	if result.Count != 3 {
		t.Errorf("expected count=3, got %d", result.Count)
	}
}

func TestFixturePath(t *testing.T) {
	if got := FixturePath("page.json"); got != filepath.Join("testdata", "page.json") {
		t.Errorf("unexpected fixture path %q", got)
	}
}

func TestFakeClientRecordsCalls(t *testing.T) {
	ctx := context.Background()
	fake := NewFakeClient()
	bulbasaur := NewRecordDTO(1, "bulbasaur", []string{"grass", "poison"}, 45, 49, 49)
	fake.AddRecords(bulbasaur)
	fake.SetPage(0, NewPageDTO(1, bulbasaur))

	page, err := fake.FetchPage(ctx, 0, 20)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].URL != Ref(1) {
		t.Fatalf("unexpected page %+v", page)
	}

	if _, err := fake.FetchByID(ctx, 1); err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if _, err := fake.FetchByID(ctx, 2); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}

	if got := fake.CallCount("FetchByID"); got != 2 {
		t.Errorf("expected 2 detail calls, got %d", got)
	}
	if got := fake.CallCount("FetchPage"); got != 1 {
		t.Errorf("expected 1 page call, got %d", got)
	}

	fake.FailAll(failure.ErrNetworkUnavailable)
	if _, err := fake.FetchPage(ctx, 0, 20); !errors.Is(err, failure.ErrNetworkUnavailable) {
		t.Fatalf("expected network failure, got %v", err)
	}
}
