// Package mapper converts between the catalog wire form, the domain record
// and the persisted cache row. Every function is pure.
package mapper

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/pkg/failure"
	"github.com/goliatone/go-catalog-cache/record"
	"github.com/goliatone/go-catalog-cache/store"
)

// OfflinePrefix marks references synthesised for cache-sourced items.
const OfflinePrefix = "offline/"

// Names of the stats projected onto dedicated cache columns.
const (
	StatHP      = "hp"
	StatAttack  = "attack"
	StatDefense = "defense"
)

// ToDomain copies a wire record into its domain form.
func ToDomain(dto catalog.RecordDTO) record.Record {
	rec := record.Record{
		ID:             dto.ID,
		Name:           dto.Name,
		Height:         dto.Height,
		Weight:         dto.Weight,
		BaseExperience: dto.BaseExperience,
		Types:          make([]record.TypeSlot, 0, len(dto.Types)),
		Stats:          make([]record.Stat, 0, len(dto.Stats)),
		Sprites: record.Sprites{
			FrontDefault: dto.Sprites.FrontDefault,
			BackDefault:  dto.Sprites.BackDefault,
			FrontShiny:   dto.Sprites.FrontShiny,
			BackShiny:    dto.Sprites.BackShiny,
		},
		Abilities: make([]record.Ability, 0, len(dto.Abilities)),
	}

	for _, t := range dto.Types {
		rec.Types = append(rec.Types, record.TypeSlot{Slot: t.Slot, Name: t.Type.Name, Ref: t.Type.URL})
	}
	for _, s := range dto.Stats {
		rec.Stats = append(rec.Stats, record.Stat{
			BaseValue: s.BaseStat,
			Effort:    s.Effort,
			Name:      s.Stat.Name,
			Ref:       s.Stat.URL,
		})
	}
	for _, a := range dto.Abilities {
		rec.Abilities = append(rec.Abilities, record.Ability{
			Name:     a.Ability.Name,
			Ref:      a.Ability.URL,
			IsHidden: a.IsHidden,
			Slot:     a.Slot,
		})
	}
	return rec
}

// ToCacheRow serialises rec for storage, stamping it with now.
func ToCacheRow(rec record.Record, now time.Time) (store.CacheRow, error) {
	row := store.CacheRow{
		ID:             rec.ID,
		Name:           rec.Name,
		Height:         rec.Height,
		Weight:         rec.Weight,
		BaseExperience: rec.BaseExperience,
		HP:             StatValue(rec, StatHP),
		Attack:         StatValue(rec, StatAttack),
		Defense:        StatValue(rec, StatDefense),
		FetchedAt:      now.UnixMilli(),
	}

	blobs := []struct {
		dst *string
		src any
	}{
		{&row.Types, nonNilSlice(rec.Types)},
		{&row.Stats, nonNilSlice(rec.Stats)},
		{&row.Sprites, rec.Sprites},
		{&row.Abilities, nonNilSlice(rec.Abilities)},
	}
	for _, b := range blobs {
		data, err := json.Marshal(b.src)
		if err != nil {
			return store.CacheRow{}, fmt.Errorf("mapper: encode record %d: %w", rec.ID, err)
		}
		*b.dst = string(data)
	}
	return row, nil
}

// FromCacheRow rebuilds a record from a stored row. A blob that does not
// decode yields a CorruptCacheData failure.
func FromCacheRow(row store.CacheRow) (record.Record, error) {
	rec := record.Record{
		ID:             row.ID,
		Name:           row.Name,
		Height:         row.Height,
		Weight:         row.Weight,
		BaseExperience: row.BaseExperience,
	}

	blobs := []struct {
		field string
		data  string
		dst   any
	}{
		{"types", row.Types, &rec.Types},
		{"stats", row.Stats, &rec.Stats},
		{"sprites", row.Sprites, &rec.Sprites},
		{"abilities", row.Abilities, &rec.Abilities},
	}
	for _, b := range blobs {
		if err := json.Unmarshal([]byte(b.data), b.dst); err != nil {
			return record.Record{}, failure.Wrap(failure.KindCorruptCacheData, err,
				fmt.Sprintf("cached record %d has an unreadable %s column", row.ID, b.field))
		}
	}

	rec.Types = nonNilSlice(rec.Types)
	rec.Stats = nonNilSlice(rec.Stats)
	rec.Abilities = nonNilSlice(rec.Abilities)
	return rec, nil
}

// StatValue returns the base value of the stat called name (case-sensitive),
// or 0 when the record has no such stat.
func StatValue(rec record.Record, name string) int {
	for _, s := range rec.Stats {
		if s.Name == name {
			return s.BaseValue
		}
	}
	return 0
}

// ExtractIDFromReference parses the trailing path segment of ref as a
// record id. Trailing slashes are ignored; offline references parse too.
func ExtractIDFromReference(ref string) (int, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(ref), "/")
	segment := trimmed
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		segment = trimmed[i+1:]
	}

	id, err := strconv.Atoi(segment)
	if err != nil || segment == "" {
		return 0, failure.ErrInvalidReference.WithMessage(fmt.Sprintf("reference %q has no numeric id", ref))
	}
	if id <= 0 {
		return 0, failure.ErrInvalidReference.WithMessage(fmt.Sprintf("reference %q has a non-positive id", ref))
	}
	return id, nil
}

// IsOfflineReference reports whether ref was synthesised from the cache.
func IsOfflineReference(ref string) bool {
	return strings.HasPrefix(ref, OfflinePrefix)
}

// OfflineReference returns the cache-mode reference for id.
func OfflineReference(id int) string {
	return OfflinePrefix + strconv.Itoa(id)
}

// ToListingItem builds the cache-mode listing entry for rec.
func ToListingItem(rec record.Record) record.ListingItem {
	item := record.ListingItem{Name: rec.Name, Ref: OfflineReference(rec.ID)}
	if t := rec.PrimaryType(); t != "" {
		item.DerivedType = &t
	}
	return item
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
