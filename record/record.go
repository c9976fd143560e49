// Package record holds the domain representation of catalog creatures and
// the listing pages built from them.
package record

// Record is a fully described creature. ID is assigned upstream and
// identifies the record in both the catalog and the local cache.
type Record struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Height         int        `json:"height"`
	Weight         int        `json:"weight"`
	BaseExperience int        `json:"base_experience"`
	Types          []TypeSlot `json:"types"`
	Stats          []Stat     `json:"stats"`
	Sprites        Sprites    `json:"sprites"`
	Abilities      []Ability  `json:"abilities"`
}

// TypeSlot is one entry of a record's ordered type list.
type TypeSlot struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
	Ref  string `json:"ref"`
}

// Stat is a named base stat.
type Stat struct {
	BaseValue int    `json:"base_value"`
	Effort    int    `json:"effort"`
	Name      string `json:"name"`
	Ref       string `json:"ref"`
}

// Sprites are optional image URLs.
type Sprites struct {
	FrontDefault *string `json:"front_default,omitempty"`
	BackDefault  *string `json:"back_default,omitempty"`
	FrontShiny   *string `json:"front_shiny,omitempty"`
	BackShiny    *string `json:"back_shiny,omitempty"`
}

// Ability is one entry of a record's ability list.
type Ability struct {
	Name     string `json:"name"`
	Ref      string `json:"ref"`
	IsHidden bool   `json:"is_hidden"`
	Slot     int    `json:"slot"`
}

// PrimaryType returns the name of the first type, or "" when there is none.
func (r Record) PrimaryType() string {
	if len(r.Types) == 0 {
		return ""
	}
	return r.Types[0].Name
}

// Source reports which path produced a listing page.
type Source string

const (
	SourceNetwork Source = "network"
	SourceCache   Source = "cache"
)

// ListingPage is one page of listing results.
//
// In cache mode TotalCount equals len(Items) and both cursors are nil.
type ListingPage struct {
	TotalCount     int           `json:"total_count"`
	NextCursor     *string       `json:"next_cursor"`
	PreviousCursor *string       `json:"previous_cursor"`
	Items          []ListingItem `json:"items"`
	Source         Source        `json:"source"`
}

// ListingItem is a summary entry. Ref is either the upstream reference or an
// offline/<id> marker for items read from the cache. DerivedType is nil when
// the type could not be determined.
type ListingItem struct {
	Name        string  `json:"name"`
	Ref         string  `json:"ref"`
	DerivedType *string `json:"derived_type"`
}
