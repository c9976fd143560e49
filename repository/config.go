package repository

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config tunes the repository.
type Config struct {
	// PageSize is the number of items per listing page.
	PageSize int `mapstructure:"page_size"`
	// RetentionWindow is how long a cached row survives ClearStaleCache.
	RetentionWindow time.Duration `mapstructure:"retention_window"`
	// RequestTimeout bounds every catalog call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// EnrichConcurrency caps the detail lookups in flight per listing.
	EnrichConcurrency int `mapstructure:"enrich_concurrency"`
}

func DefaultConfig() Config {
	return Config{
		PageSize:          20,
		RetentionWindow:   24 * time.Hour,
		RequestTimeout:    30 * time.Second,
		EnrichConcurrency: 20,
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.RetentionWindow, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.EnrichConcurrency, validation.Required, validation.Min(1)),
	)
}
