package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/internal/app"
	"github.com/goliatone/go-catalog-cache/pkg/logger"
	"github.com/goliatone/go-catalog-cache/repository"
	"github.com/goliatone/go-catalog-cache/store"
	"github.com/goliatone/go-catalog-cache/store/cachedstore"
	"github.com/goliatone/go-catalog-cache/store/memstore"
	"github.com/goliatone/go-catalog-cache/store/sqlstore"
)

// Container builds and owns the long-lived components: the catalog client,
// the cache store, the memo and the repository over them.
type Container struct {
	config        app.Config
	client        catalog.Client
	store         store.Store
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	repository    *repository.Repository
	log           *zap.Logger
}

// Option overrides a component the container would otherwise build.
type Option func(*Container)

// WithClient replaces the HTTP catalog client.
func WithClient(client catalog.Client) Option {
	return func(c *Container) {
		c.client = client
	}
}

// WithStore replaces the configured store. The container takes ownership
// and closes it on Close.
func WithStore(st store.Store) Option {
	return func(c *Container) {
		c.store = st
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// NewContainer wires every component from cfg.
func NewContainer(ctx context.Context, cfg app.Config, opts ...Option) (*Container, error) {
	c := &Container{
		config:        cfg,
		keySerializer: cache.NewDefaultKeySerializer(),
		log:           logger.WithModule("di"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.client == nil {
		client, err := catalog.NewHTTPClient(cfg.Catalog, catalog.WithLogger(c.log.Named("catalog")))
		if err != nil {
			return nil, fmt.Errorf("di: catalog client: %w", err)
		}
		c.client = client
	}

	if c.store == nil {
		st, err := openStore(ctx, cfg.Store, c.log)
		if err != nil {
			return nil, err
		}
		c.store = st
	}

	memo, err := cache.NewCacheService(cfg.Memo)
	if err != nil {
		_ = c.store.Close()
		return nil, fmt.Errorf("di: memo: %w", err)
	}
	c.cacheService = memo

	if cfg.Store.ReadCache {
		c.store = cachedstore.New(c.store, c.cacheService, cachedstore.WithLogger(c.log.Named("cachedstore")))
	}

	repo, err := repository.New(c.client, c.store,
		repository.WithConfig(cfg.Repository),
		repository.WithCacheService(c.cacheService),
		repository.WithKeySerializer(c.keySerializer),
		repository.WithLogger(c.log.Named("repository")),
	)
	if err != nil {
		_ = c.store.Close()
		return nil, fmt.Errorf("di: repository: %w", err)
	}
	c.repository = repo

	c.log.Debug("container ready", zap.String("store", cfg.Store.Driver))
	return c, nil
}

func openStore(ctx context.Context, cfg app.StoreConfig, log *zap.Logger) (store.Store, error) {
	if cfg.Driver == app.StoreMemory {
		return memstore.New(), nil
	}

	st, err := sqlstore.Open(ctx, cfg.SQL(), sqlstore.WithLogger(log.Named("sqlstore")))
	if err != nil {
		return nil, fmt.Errorf("di: store: %w", err)
	}
	return st, nil
}

func (c *Container) Repository() *repository.Repository {
	return c.repository
}

func (c *Container) Store() store.Store {
	return c.store
}

func (c *Container) Client() catalog.Client {
	return c.client
}

func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Config returns a copy of the configuration the container was built from.
func (c *Container) Config() app.Config {
	return c.config
}

// Close releases the store.
func (c *Container) Close() error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("di: close store: %w", err)
	}
	return nil
}
