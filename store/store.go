// Package store defines the local cache of previously fetched records.
//
// The store keeps one CacheRow per record id (last write wins) and answers
// the offline queries the repository needs: lookup by id or exact name,
// name substring search, id-ordered paging, stat/type filtering and
// age-based eviction. Implementations live in the sqlstore and memstore
// subpackages.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// CacheRow is the denormalised, persisted projection of a record. Compound
// fields are stored as opaque JSON text; HP, Attack and Defense are derived
// from the stats so they can be indexed and filtered.
type CacheRow struct {
	bun.BaseModel `bun:"table:record_cache"`

	ID             int    `bun:"id,pk"`
	Name           string `bun:"name,notnull"`
	Height         int    `bun:"height,notnull"`
	Weight         int    `bun:"weight,notnull"`
	BaseExperience int    `bun:"base_experience,notnull"`
	Types          string `bun:"types,notnull"`
	Stats          string `bun:"stats,notnull"`
	Sprites        string `bun:"sprites,notnull"`
	Abilities      string `bun:"abilities,notnull"`
	HP             int    `bun:"hp,notnull"`
	Attack         int    `bun:"attack,notnull"`
	Defense        int    `bun:"defense,notnull"`
	FetchedAt      int64  `bun:"fetched_at,notnull"` // epoch milliseconds
}

// OrderBy selects the ordering of filter results.
type OrderBy string

const (
	OrderDefault OrderBy = ""
	OrderName    OrderBy = "name"
	OrderHP      OrderBy = "hp"
	OrderAttack  OrderBy = "attack"
	OrderDefense OrderBy = "defense"
)

// ParseOrderBy accepts the empty string and the four known orderings,
// case-insensitively.
func ParseOrderBy(s string) (OrderBy, error) {
	switch o := OrderBy(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderDefault, OrderName, OrderHP, OrderAttack, OrderDefense:
		return o, nil
	default:
		return OrderDefault, fmt.Errorf("unknown order %q", s)
	}
}

// Filter holds optional predicates; nil fields always match.
type Filter struct {
	// Type is matched as a case-insensitive substring of the whole serialised
	// types blob, keys and refs included. Values such as "name", "slot" or
	// "type" therefore match every row; callers wanting an exact type name
	// should pass one.
	Type       *string
	MinHP      *int
	MinAttack  *int
	MinDefense *int
	OrderBy    OrderBy
}

// Store is the cache storage contract. Get and GetByName return a nil row
// without error when nothing matches.
type Store interface {
	Get(ctx context.Context, id int) (*CacheRow, error)
	GetByName(ctx context.Context, name string) (*CacheRow, error)
	// SearchByName returns rows whose name contains query. Case-insensitive
	// search folds ASCII letters in every backend; folding of other letters
	// follows the backend (memstore and postgres fold Unicode, sqlite does not).
	SearchByName(ctx context.Context, query string, caseInsensitive bool) ([]CacheRow, error)
	Page(ctx context.Context, offset, limit int) ([]CacheRow, error)
	Filter(ctx context.Context, f Filter) ([]CacheRow, error)
	Upsert(ctx context.Context, row CacheRow) error
	EvictOlderThan(ctx context.Context, cutoffMillis int64) (int, error)
	Clear(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Matches reports whether row satisfies every predicate of f. Backends that
// filter in process share it so type matching stays consistent.
func (f Filter) Matches(row CacheRow) bool {
	if f.Type != nil && !strings.Contains(strings.ToLower(row.Types), strings.ToLower(*f.Type)) {
		return false
	}
	if f.MinHP != nil && row.HP < *f.MinHP {
		return false
	}
	if f.MinAttack != nil && row.Attack < *f.MinAttack {
		return false
	}
	if f.MinDefense != nil && row.Defense < *f.MinDefense {
		return false
	}
	return true
}

// Less orders two rows according to o, breaking ties by id.
func (o OrderBy) Less(a, b CacheRow) bool {
	switch o {
	case OrderName:
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	case OrderHP:
		if a.HP != b.HP {
			return a.HP > b.HP
		}
	case OrderAttack:
		if a.Attack != b.Attack {
			return a.Attack > b.Attack
		}
	case OrderDefense:
		if a.Defense != b.Defense {
			return a.Defense > b.Defense
		}
	}
	return a.ID < b.ID
}
