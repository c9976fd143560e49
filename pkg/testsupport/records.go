package testsupport

import (
	"fmt"

	"github.com/goliatone/go-catalog-cache/catalog"
)

// RefBase is the reference prefix used by generated fixtures.
const RefBase = "https://x/pokemon/"

// Ref returns the detail reference for id.
func Ref(id int) string {
	return fmt.Sprintf("%s%d/", RefBase, id)
}

// NewRecordDTO builds a wire record with the given type names and
// hp/attack/defense base stats.
func NewRecordDTO(id int, name string, types []string, hp, attack, defense int) catalog.RecordDTO {
	front := fmt.Sprintf("https://img/%d.png", id)

	rec := catalog.RecordDTO{
		ID:             id,
		Name:           name,
		Height:         7 + id,
		Weight:         69 + id,
		BaseExperience: 64,
		Stats: []catalog.StatDTO{
			{BaseStat: hp, Effort: 0, Stat: catalog.NamedRefDTO{Name: "hp", URL: "https://x/stat/1/"}},
			{BaseStat: attack, Effort: 0, Stat: catalog.NamedRefDTO{Name: "attack", URL: "https://x/stat/2/"}},
			{BaseStat: defense, Effort: 1, Stat: catalog.NamedRefDTO{Name: "defense", URL: "https://x/stat/3/"}},
			{BaseStat: 45, Effort: 0, Stat: catalog.NamedRefDTO{Name: "speed", URL: "https://x/stat/6/"}},
		},
		Sprites: catalog.SpritesDTO{FrontDefault: &front},
		Abilities: []catalog.AbilityDTO{
			{Ability: catalog.NamedRefDTO{Name: "overgrow", URL: "https://x/ability/65/"}, IsHidden: false, Slot: 1},
			{Ability: catalog.NamedRefDTO{Name: "chlorophyll", URL: "https://x/ability/34/"}, IsHidden: true, Slot: 3},
		},
	}
	for i, typeName := range types {
		rec.Types = append(rec.Types, catalog.TypeDTO{
			Slot: i + 1,
			Type: catalog.NamedRefDTO{Name: typeName, URL: "https://x/type/" + typeName + "/"},
		})
	}
	return rec
}

// NewPageDTO builds a listing page whose items reference the given records.
func NewPageDTO(count int, records ...catalog.RecordDTO) catalog.PageDTO {
	page := catalog.PageDTO{Count: count}
	for _, rec := range records {
		page.Results = append(page.Results, catalog.PageItemDTO{Name: rec.Name, URL: Ref(rec.ID)})
	}
	return page
}
