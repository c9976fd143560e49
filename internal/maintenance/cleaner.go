// Package maintenance schedules stale-cache eviction while the service runs.
package maintenance

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/pkg/logger"
	"github.com/goliatone/go-catalog-cache/repository"
)

const defaultSchedule = "@hourly"

// Evictor removes cache rows older than its retention window.
type Evictor interface {
	ClearStaleCache(ctx context.Context) repository.Result[int]
}

// Cleaner runs an Evictor on a cron schedule.
type Cleaner struct {
	evictor  Evictor
	cron     *cron.Cron
	schedule string
	log      *zap.Logger

	mu      sync.Mutex
	started bool
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSchedule overrides the cron expression used for eviction.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(cleaner *Cleaner) {
		if l != nil {
			cleaner.log = l
		}
	}
}

// NewCleaner constructs a Cleaner. A nil evictor disables every job.
func NewCleaner(evictor Evictor, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		evictor:  evictor,
		schedule: defaultSchedule,
		log:      logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(cleaner)
	}
	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the eviction job and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.evictor == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if _, err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("stale cache eviction failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	c.started = true
	c.log.Info("maintenance scheduled", zap.String("schedule", c.schedule))
	return nil
}

// Stop halts the scheduler. The returned context is done once a running
// job has finished.
func (c *Cleaner) Stop() context.Context {
	return c.cron.Stop()
}

// RunOnce evicts stale rows immediately and returns how many were removed.
func (c *Cleaner) RunOnce(ctx context.Context) (int, error) {
	if c.evictor == nil {
		return 0, nil
	}

	res := c.evictor.ClearStaleCache(ctx)
	deleted, err := res.Unwrap()
	if err != nil {
		return 0, err
	}
	c.log.Debug("stale cache evicted", zap.Int("deleted", deleted))
	return deleted, nil
}
