// Package sqlstore persists cache rows in a SQL database through bun.
//
// Both sqlite (mattn/go-sqlite3) and postgres (lib/pq) are supported; the
// schema is created on Open and every write is a single statement, so a row
// is either fully replaced or untouched.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/pkg/logger"
	"github.com/goliatone/go-catalog-cache/store"
)

var _ store.Store = (*Store)(nil)

var indexedColumns = []string{"name", "hp", "attack", "defense", "fetched_at"}

// Store is a store.Store backed by a bun database handle.
type Store struct {
	db  *bun.DB
	log *zap.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used for query tracing.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open connects to the configured database and ensures the schema exists.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sqlstore: invalid config: %w", err)
	}

	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", cfg.Driver, err)
	}

	var db *bun.DB
	switch cfg.Driver {
	case DriverPostgres:
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		// sqlite serialises writers; one connection avoids SQLITE_BUSY
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	s, err := New(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing bun handle and ensures the schema exists.
func New(ctx context.Context, db *bun.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, log: logger.WithModule("sqlstore")}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	db.AddQueryHook(queryLogger{log: s.log})

	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *bun.DB {
	return s.db
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*store.CacheRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: create table: %w", err)
	}

	for _, column := range indexedColumns {
		if _, err := s.db.NewCreateIndex().
			Model((*store.CacheRow)(nil)).
			Index("record_cache_" + column + "_idx").
			Column(column).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("sqlstore: create index on %s: %w", column, err)
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id int) (*store.CacheRow, error) {
	return s.one(ctx, "id = ?", id)
}

func (s *Store) GetByName(ctx context.Context, name string) (*store.CacheRow, error) {
	return s.one(ctx, "name = ?", name)
}

func (s *Store) one(ctx context.Context, where string, arg any) (*store.CacheRow, error) {
	row := new(store.CacheRow)
	err := s.db.NewSelect().
		Model(row).
		Where(where, arg).
		OrderExpr("id ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: select: %w", err)
	}
	return row, nil
}

// SearchByName matches case-insensitively through LOWER, which sqlite applies
// to ASCII letters only.
func (s *Store) SearchByName(ctx context.Context, query string, caseInsensitive bool) ([]store.CacheRow, error) {
	var rows []store.CacheRow
	q := s.db.NewSelect().Model(&rows)
	switch {
	case caseInsensitive:
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", containsPattern(strings.ToLower(query)))
	case s.db.Dialect().Name() == dialect.PG:
		q = q.Where("strpos(name, ?) > 0", query)
	default:
		q = q.Where("instr(name, ?) > 0", query)
	}

	if err := q.OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("sqlstore: search %q: %w", query, err)
	}
	return nonNil(rows), nil
}

func (s *Store) Page(ctx context.Context, offset, limit int) ([]store.CacheRow, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []store.CacheRow{}, nil
	}

	var rows []store.CacheRow
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: page offset=%d limit=%d: %w", offset, limit, err)
	}
	return nonNil(rows), nil
}

func (s *Store) Filter(ctx context.Context, f store.Filter) ([]store.CacheRow, error) {
	var rows []store.CacheRow
	q := s.db.NewSelect().Model(&rows)
	if f.Type != nil {
		q = q.Where("LOWER(types) LIKE ? ESCAPE '!'", containsPattern(strings.ToLower(*f.Type)))
	}
	if f.MinHP != nil {
		q = q.Where("hp >= ?", *f.MinHP)
	}
	if f.MinAttack != nil {
		q = q.Where("attack >= ?", *f.MinAttack)
	}
	if f.MinDefense != nil {
		q = q.Where("defense >= ?", *f.MinDefense)
	}

	if err := q.OrderExpr(orderClause(f.OrderBy)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("sqlstore: filter: %w", err)
	}
	return nonNil(rows), nil
}

func (s *Store) Upsert(ctx context.Context, row store.CacheRow) error {
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("height = EXCLUDED.height").
		Set("weight = EXCLUDED.weight").
		Set("base_experience = EXCLUDED.base_experience").
		Set("types = EXCLUDED.types").
		Set("stats = EXCLUDED.stats").
		Set("sprites = EXCLUDED.sprites").
		Set("abilities = EXCLUDED.abilities").
		Set("hp = EXCLUDED.hp").
		Set("attack = EXCLUDED.attack").
		Set("defense = EXCLUDED.defense").
		Set("fetched_at = EXCLUDED.fetched_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: upsert %d: %w", row.ID, err)
	}
	return nil
}

func (s *Store) EvictOlderThan(ctx context.Context, cutoffMillis int64) (int, error) {
	return s.delete(ctx, "fetched_at < ?", cutoffMillis)
}

func (s *Store) Clear(ctx context.Context) (int, error) {
	return s.delete(ctx, "1 = 1")
}

func (s *Store) delete(ctx context.Context, where string, args ...any) (int, error) {
	res, err := s.db.NewDelete().
		Model((*store.CacheRow)(nil)).
		Where(where, args...).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlstore: rows affected: %w", err)
	}
	return int(n), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*store.CacheRow)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: count: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func orderClause(o store.OrderBy) string {
	switch o {
	case store.OrderName:
		return "name ASC, id ASC"
	case store.OrderHP:
		return "hp DESC, id ASC"
	case store.OrderAttack:
		return "attack DESC, id ASC"
	case store.OrderDefense:
		return "defense DESC, id ASC"
	default:
		return "id ASC"
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a LIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func nonNil(rows []store.CacheRow) []store.CacheRow {
	if rows == nil {
		return []store.CacheRow{}
	}
	return rows
}
