package cache

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-catalog-cache/internal/cacheinfra"
)

// Config sizes the in-process memo.
type Config struct {
	Capacity             int           `mapstructure:"capacity"`
	NumShards            int           `mapstructure:"num_shards"`
	TTL                  time.Duration `mapstructure:"ttl"`
	EvictionPercentage   int           `mapstructure:"eviction_percentage"`
	MissingRecordStorage bool          `mapstructure:"missing_record_storage"`
	EvictionInterval     time.Duration `mapstructure:"eviction_interval"`
}

// DefaultConfig returns the memo defaults.
func DefaultConfig() Config {
	return fromInternal(cacheinfra.DefaultConfig())
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}

// NewCacheService builds the sturdyc-backed CacheService.
func NewCacheService(cfg Config) (CacheService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svc, err := cacheinfra.NewSturdycService(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return sturdycAdapter{svc: svc}, nil
}

// sturdycAdapter converts FetchFn[any] to the plain function type the
// infrastructure layer expects.
type sturdycAdapter struct {
	svc *cacheinfra.SturdycService
}

func (a sturdycAdapter) GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[any]) (any, error) {
	return a.svc.GetOrFetch(ctx, key, fetchFn)
}

func (a sturdycAdapter) Delete(ctx context.Context, key string) error {
	return a.svc.Delete(ctx, key)
}

func (a sturdycAdapter) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	return a.svc.DeleteByPrefix(ctx, prefix)
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		MissingRecordStorage: c.MissingRecordStorage,
		EvictionInterval:     c.EvictionInterval,
	}
}

func fromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		MissingRecordStorage: cfg.MissingRecordStorage,
		EvictionInterval:     cfg.EvictionInterval,
	}
}
