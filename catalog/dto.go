package catalog

// PageDTO is the wire form of a listing page.
type PageDTO struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []PageItemDTO `json:"results"`
}

// PageItemDTO is a listing entry: a name and a reference to the detail resource.
type PageItemDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RecordDTO is the wire form of a full record.
type RecordDTO struct {
	ID             int          `json:"id"`
	Name           string       `json:"name"`
	Height         int          `json:"height"`
	Weight         int          `json:"weight"`
	BaseExperience int          `json:"base_experience"`
	Types          []TypeDTO    `json:"types"`
	Stats          []StatDTO    `json:"stats"`
	Sprites        SpritesDTO   `json:"sprites"`
	Abilities      []AbilityDTO `json:"abilities"`
}

// NamedRefDTO is the {name, url} pair the catalog uses for every link.
type NamedRefDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type TypeDTO struct {
	Slot int         `json:"slot"`
	Type NamedRefDTO `json:"type"`
}

type StatDTO struct {
	BaseStat int         `json:"base_stat"`
	Effort   int         `json:"effort"`
	Stat     NamedRefDTO `json:"stat"`
}

type SpritesDTO struct {
	FrontDefault *string `json:"front_default"`
	BackDefault  *string `json:"back_default"`
	FrontShiny   *string `json:"front_shiny"`
	BackShiny    *string `json:"back_shiny"`
}

type AbilityDTO struct {
	Ability  NamedRefDTO `json:"ability"`
	IsHidden bool        `json:"is_hidden"`
	Slot     int         `json:"slot"`
}
