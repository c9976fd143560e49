package repository

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/cache"
)

// Option configures a Repository.
type Option func(*Repository)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(r *Repository) {
		r.cfg = cfg
	}
}

// WithCacheService sets the memo used by GetRecordType.
func WithCacheService(svc cache.CacheService) Option {
	return func(r *Repository) {
		r.memo = svc
	}
}

// WithKeySerializer sets how memo keys are built.
func WithKeySerializer(keys cache.KeySerializer) Option {
	return func(r *Repository) {
		r.keys = keys
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

// WithNow sets the clock used to stamp and evict cache rows.
func WithNow(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}
