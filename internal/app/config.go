package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/repository"
	"github.com/goliatone/go-catalog-cache/store/sqlstore"
)

// EnvPrefix prefixes every environment override, e.g.
// CATALOGCACHE_REPOSITORY_PAGE_SIZE=50.
const EnvPrefix = "CATALOGCACHE"

// StoreMemory selects the in-process store instead of a SQL database.
const StoreMemory = "memory"

// Config is the runtime configuration of the catalog cache.
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Catalog     catalog.Config    `mapstructure:"catalog"`
	Store       StoreConfig       `mapstructure:"store"`
	Repository  repository.Config `mapstructure:"repository"`
	Memo        cache.Config      `mapstructure:"memo"`
	Server      ServerConfig      `mapstructure:"server"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// LogConfig configures the global zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// StoreConfig selects the cache store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // sqlite3, postgres or memory
	DSN    string `mapstructure:"dsn"`
	// ReadCache memoizes store reads in process until the next write.
	ReadCache bool `mapstructure:"read_cache"`
}

// SQL returns the sqlstore settings for SQL drivers.
func (s StoreConfig) SQL() sqlstore.Config {
	return sqlstore.Config{Driver: s.Driver, DSN: s.DSN}
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Metrics         bool          `mapstructure:"metrics"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MaintenanceConfig schedules stale-cache eviction while serving.
type MaintenanceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// LoadConfig reads configuration from configFile when given, otherwise
// from catalogcache.yaml in the working directory or any of paths.
// Environment variables override file values; defaults fill the rest.
func LoadConfig(configFile string, paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("catalogcache")
		v.AddConfigPath(".")
		for _, path := range paths {
			v.AddConfigPath(path)
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	catalogDefaults := catalog.DefaultConfig()
	v.SetDefault("catalog.base_url", catalogDefaults.BaseURL)
	v.SetDefault("catalog.timeout", catalogDefaults.Timeout.String())
	v.SetDefault("catalog.user_agent", catalogDefaults.UserAgent)

	sqlDefaults := sqlstore.DefaultConfig()
	v.SetDefault("store.driver", sqlDefaults.Driver)
	v.SetDefault("store.dsn", sqlDefaults.DSN)
	v.SetDefault("store.read_cache", false)

	repoDefaults := repository.DefaultConfig()
	v.SetDefault("repository.page_size", repoDefaults.PageSize)
	v.SetDefault("repository.retention_window", repoDefaults.RetentionWindow.String())
	v.SetDefault("repository.request_timeout", repoDefaults.RequestTimeout.String())
	v.SetDefault("repository.enrich_concurrency", repoDefaults.EnrichConcurrency)

	memoDefaults := cache.DefaultConfig()
	v.SetDefault("memo.capacity", memoDefaults.Capacity)
	v.SetDefault("memo.num_shards", memoDefaults.NumShards)
	v.SetDefault("memo.ttl", memoDefaults.TTL.String())
	v.SetDefault("memo.eviction_percentage", memoDefaults.EvictionPercentage)
	v.SetDefault("memo.missing_record_storage", memoDefaults.MissingRecordStorage)
	v.SetDefault("memo.eviction_interval", memoDefaults.EvictionInterval.String())

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.metrics", true)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.schedule", "@every 1h")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Log),
		validation.Field(&c.Catalog),
		validation.Field(&c.Store),
		validation.Field(&c.Repository),
		validation.Field(&c.Memo),
		validation.Field(&c.Server),
		validation.Field(&c.Maintenance),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
	)
}

func (s StoreConfig) Validate() error {
	if s.Driver == StoreMemory {
		return nil
	}
	return s.SQL().Validate()
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required),
		validation.Field(&s.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

func (m MaintenanceConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Schedule, validation.When(m.Enabled, validation.Required, validation.By(validSchedule))),
	)
}

func validSchedule(value any) error {
	spec, _ := value.(string)
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule: %w", err)
	}
	return nil
}
