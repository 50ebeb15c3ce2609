// Package sqlstore keeps a symbol table in a SQL database through bun. It
// supports sqlite3 and postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var (
	ErrUnsupportedDriver = errors.New("sqlstore: unsupported driver")
	ErrMissingDB         = errors.New("sqlstore: store requires a database")
)

type symbolModel struct {
	bun.BaseModel `bun:"table:symbols,alias:s"`

	ID        int64     `bun:",pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	BareName  string    `bun:"bare_name,notnull"`
	Module    string    `bun:"module,notnull"`
	Signature string    `bun:"signature,notnull"`
	Kind      string    `bun:"kind,notnull"`
	Doc       string    `bun:"doc,notnull"`
	Position  int       `bun:"position,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Store is a SymbolProvider backed by the symbols table. Lookups return rows
// in insertion order.
type Store struct {
	db *bun.DB
}

var _ interfaces.SymbolProvider = (*Store)(nil)

// New wraps an open bun database.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn with the given driver and picks the matching dialect.
func Open(driver, dsn string) (*Store, error) {
	var dialect schema.Dialect
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite":
		driver = DriverSQLite
		dialect = sqlitedialect.New()
	case DriverPostgres, "pg", "postgresql":
		driver = DriverPostgres
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// In-memory databases live as long as their connection.
		sqldb.SetMaxOpenConns(1)
	}
	return New(bun.NewDB(sqldb, dialect)), nil
}

// DB exposes the underlying database.
func (s *Store) DB() *bun.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the symbols table and its indexes when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if s.db == nil {
		return ErrMissingDB
	}
	if _, err := s.db.NewCreateTable().Model((*symbolModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: create table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*symbolModel)(nil)).
		Index("symbols_identity_idx").
		Unique().
		IfNotExists().
		Column("name", "signature").
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: create index: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*symbolModel)(nil)).
		Index("symbols_bare_name_idx").
		IfNotExists().
		Column("bare_name").
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: create index: %w", err)
	}
	return nil
}

// Upsert stores symbols keyed by qualified name and signature. New symbols
// are appended after existing ones; updated symbols keep their position.
func (s *Store) Upsert(ctx context.Context, symbols ...interfaces.Symbol) error {
	if s.db == nil {
		return ErrMissingDB
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		next, err := tx.NewSelect().Model((*symbolModel)(nil)).Count(ctx)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, sym := range symbols {
			model := modelFromSymbol(sym)
			model.UpdatedAt = now

			var existing symbolModel
			err := tx.NewSelect().
				Model(&existing).
				Where("name = ?", model.Name).
				Where("signature = ?", model.Signature).
				Scan(ctx)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				model.Position = next
				next++
				if _, err := tx.NewInsert().Model(&model).Exec(ctx); err != nil {
					return fmt.Errorf("sqlstore: insert %s: %w", model.Name, err)
				}
			case err != nil:
				return err
			default:
				model.ID = existing.ID
				model.Position = existing.Position
				if _, err := tx.NewUpdate().
					Model(&model).
					Column("module", "bare_name", "kind", "doc", "updated_at").
					WherePK().
					Exec(ctx); err != nil {
					return fmt.Errorf("sqlstore: update %s: %w", model.Name, err)
				}
			}
		}
		return nil
	})
}

// Lookup returns symbols matching the query name and module scope.
// Signatures are left to the caller.
func (s *Store) Lookup(ctx context.Context, query interfaces.SymbolQuery) ([]interfaces.Symbol, error) {
	if s.db == nil {
		return nil, ErrMissingDB
	}
	var models []symbolModel
	q := s.db.NewSelect().Model(&models)
	if strings.Contains(query.Name, ".") {
		q = q.Where("s.name = ?", query.Name)
	} else {
		q = q.Where("s.bare_name = ?", query.Name)
	}
	if len(query.Modules) > 0 {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, m := range query.Modules {
				q = q.WhereOr("s.module = ?", m).WhereOr("s.module LIKE ?", m+".%")
			}
			return q
		})
	}
	if err := q.OrderExpr("s.position ASC, s.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]interfaces.Symbol, 0, len(models))
	for i := range models {
		out = append(out, models[i].symbol())
	}
	return out, nil
}

func modelFromSymbol(sym interfaces.Symbol) symbolModel {
	return symbolModel{
		Name:      sym.QualifiedName(),
		BareName:  sym.BareName(),
		Module:    sym.ModuleName(),
		Signature: strings.TrimSpace(sym.Signature),
		Kind:      sym.Kind,
		Doc:       sym.Doc,
	}
}

func (m symbolModel) symbol() interfaces.Symbol {
	return interfaces.Symbol{
		Name:      m.Name,
		Module:    m.Module,
		Signature: m.Signature,
		Kind:      m.Kind,
		Doc:       m.Doc,
	}
}
