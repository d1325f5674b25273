// Package sqlstore persists items in a SQL table through bun.
//
// Supported drivers are sqlite (mattn/go-sqlite3) and postgres (lib/pq). Insertion
// order is kept by an auto-incrementing seq column; the item id is a separate unique
// column. Items without a usable price are stored with a NULL price.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-catalog-cache/item"
	"github.com/goliatone/go-catalog-cache/store"
)

var (
	_ store.ItemStore = (*Store)(nil)
	_ store.Seeder    = (*Store)(nil)
)

type itemRow struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	Seq      int64           `bun:"seq,pk,autoincrement"`
	ID       int64           `bun:"id,notnull,unique"`
	Name     string          `bun:"name,notnull"`
	Category string          `bun:"category,notnull"`
	Price    sql.NullFloat64 `bun:"price"`
}

func rowFromItem(it item.Item) itemRow {
	row := itemRow{ID: it.ID, Name: it.Name, Category: it.Category}
	if it.HasPrice() {
		row.Price = sql.NullFloat64{Float64: it.Price, Valid: true}
	}
	return row
}

func (r itemRow) toItem() item.Item {
	price := math.NaN()
	if r.Price.Valid {
		price = r.Price.Float64
	}
	return item.Item{ID: r.ID, Name: r.Name, Category: r.Category, Price: price}
}

// Store is a bun-backed ItemStore.
type Store struct {
	db     *bun.DB
	logger zerolog.Logger
}

// Open connects to driver ("sqlite", "sqlite3" or "postgres") at dsn and creates the
// items table if needed.
func Open(ctx context.Context, driver, dsn string, logger zerolog.Logger) (*Store, error) {
	var db *bun.DB

	switch driver {
	case "sqlite", "sqlite3":
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, store.Wrap("open", err)
		}
		// :memory: databases live and die with their connection
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case "postgres":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, store.Wrap("open", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	s := New(db, logger)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing bun.DB. Call Migrate before first use.
func New(db *bun.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "sqlstore").Logger(),
	}
}

// Migrate creates the items table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*itemRow)(nil)).
		IfNotExists().
		Exec(ctx)
	return store.Wrap("migrate", err)
}

func (s *Store) ReadAll(ctx context.Context) ([]item.Item, error) {
	var rows []itemRow
	err := s.db.NewSelect().
		Model(&rows).
		Order("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, store.Wrap("read", err)
	}

	items := make([]item.Item, len(rows))
	for i, r := range rows {
		items[i] = r.toItem()
	}
	return items, nil
}

func (s *Store) Append(ctx context.Context, it item.Item) error {
	row := rowFromItem(it)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return store.Wrap("append", err)
	}
	return nil
}

// Replace swaps the whole table content in one transaction.
func (s *Store) Replace(ctx context.Context, items []item.Item) error {
	rows := make([]itemRow, len(items))
	for i, it := range items {
		rows[i] = rowFromItem(it)
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*itemRow)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		const batch = 500
		for start := 0; start < len(rows); start += batch {
			end := min(start+batch, len(rows))
			chunk := rows[start:end]
			if _, err := tx.NewInsert().Model(&chunk).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return store.Wrap("replace", err)
	}

	s.logger.Debug().Int("items", len(items)).Msg("dataset replaced")
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
