package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/trolley/backend/internal/domain"
)

// Store persists shopping lists and store price listings in SQLite.
// It implements domain.ListRepository and domain.PriceRepository.
type Store struct {
	db *sql.DB
}

// connPragmas are applied by the driver to every pooled connection
var connPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
}

// Open opens a SQLite database at path. Every connection runs in WAL mode with a
// busy timeout and foreign keys on, and transactions take the write lock up front.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: ping")
	}
	return &Store{db: db}, nil
}

func dsn(path string) string {
	params := url.Values{}
	for _, p := range connPragmas {
		params.Add("_pragma", p)
	}
	params.Set("_txlock", "immediate")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params.Encode()
}

const migration = `
CREATE TABLE IF NOT EXISTS lists (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	store_id   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS list_items (
	id                TEXT PRIMARY KEY,
	list_id           TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
	position          INTEGER NOT NULL,
	name              TEXT NOT NULL,
	quantity          INTEGER NOT NULL DEFAULT 1,
	size              TEXT NOT NULL DEFAULT '',
	original_size     TEXT NOT NULL DEFAULT '',
	original_store_id TEXT NOT NULL DEFAULT '',
	estimated_price   REAL,
	price_override    INTEGER NOT NULL DEFAULT 0,
	size_override     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS store_prices (
	id        TEXT PRIMARY KEY,
	store_id  TEXT NOT NULL,
	item_key  TEXT NOT NULL,
	item_name TEXT NOT NULL,
	size      TEXT NOT NULL,
	price     REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_list_items_list_id ON list_items(list_id, position);
CREATE INDEX IF NOT EXISTS idx_store_prices_lookup ON store_prices(store_id, item_key);
`

// Migrate creates the schema if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateList inserts a new list with its items
func (s *Store) CreateList(ctx context.Context, list *domain.ShoppingList) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO lists (id, name, store_id, updated_at) VALUES (?, ?, ?, ?)`,
			list.ID, list.Name, list.StoreID, list.UpdatedAt.UTC(),
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert list")
		}
		return insertItems(ctx, tx, list)
	})
}

// GetList loads a list and its items in position order
func (s *Store) GetList(ctx context.Context, id string) (*domain.ShoppingList, error) {
	var list domain.ShoppingList
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, store_id, updated_at FROM lists WHERE id = ?`, id,
	).Scan(&list.ID, &list.Name, &list.StoreID, &list.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrListNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get list")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, size, original_size, original_store_id,
		       estimated_price, price_override, size_override
		FROM list_items WHERE list_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query list items")
	}
	defer rows.Close()

	list.Items = []domain.ListItem{}
	for rows.Next() {
		var (
			item  domain.ListItem
			price sql.NullFloat64
		)
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Quantity, &item.Size, &item.OriginalSize,
			&item.OriginalStoreID, &price, &item.PriceOverride, &item.SizeOverride,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan list item")
		}
		if price.Valid {
			p := price.Float64
			item.EstimatedPrice = &p
		}
		list.Items = append(list.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate list items")
	}
	return &list, nil
}

// SaveList replaces the list row and all of its items in one transaction
func (s *Store) SaveList(ctx context.Context, list *domain.ShoppingList) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE lists SET name = ?, store_id = ?, updated_at = ? WHERE id = ?`,
			list.Name, list.StoreID, list.UpdatedAt.UTC(), list.ID,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: update list")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return eris.Wrap(err, "sqlite: rows affected")
		}
		if n == 0 {
			return domain.ErrListNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM list_items WHERE list_id = ?`, list.ID); err != nil {
			return eris.Wrap(err, "sqlite: delete list items")
		}
		return insertItems(ctx, tx, list)
	})
}

func insertItems(ctx context.Context, tx *sql.Tx, list *domain.ShoppingList) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO list_items (id, list_id, position, name, quantity, size, original_size,
		                        original_store_id, estimated_price, price_override, size_override)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert item")
	}
	defer stmt.Close()

	for i, item := range list.Items {
		var price sql.NullFloat64
		if item.EstimatedPrice != nil {
			price = sql.NullFloat64{Float64: *item.EstimatedPrice, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			item.ID, list.ID, i, item.Name, item.Quantity, item.Size, item.OriginalSize,
			item.OriginalStoreID, price, item.PriceOverride, item.SizeOverride,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert item %s", item.ID)
		}
	}
	return nil
}

// ReplaceStorePrices swaps a store's whole price listing for listings
func (s *Store) ReplaceStorePrices(ctx context.Context, storeID string, listings []domain.StoreListing) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM store_prices WHERE store_id = ?`, storeID); err != nil {
			return eris.Wrap(err, "sqlite: clear store prices")
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO store_prices (id, store_id, item_key, item_name, size, price)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return eris.Wrap(err, "sqlite: prepare insert price")
		}
		defer stmt.Close()

		for _, l := range listings {
			id := l.ID
			if id == "" {
				id = uuid.NewString()
			}
			if _, err := stmt.ExecContext(ctx, id, storeID, itemKey(l.ItemName), l.ItemName, l.Size, l.Price); err != nil {
				return eris.Wrapf(err, "sqlite: insert price for %q", l.ItemName)
			}
		}
		return nil
	})
}

// LookupPrices implements domain.PriceLookup. Item names match case-insensitively.
func (s *Store) LookupPrices(ctx context.Context, itemName, storeID string) ([]domain.StorePrice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT size, price FROM store_prices WHERE store_id = ? AND item_key = ? ORDER BY rowid`,
		storeID, itemKey(itemName),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: lookup prices")
	}
	defer rows.Close()

	prices := []domain.StorePrice{}
	for rows.Next() {
		var p domain.StorePrice
		if err := rows.Scan(&p.Size, &p.Price); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan price")
		}
		prices = append(prices, p)
	}
	return prices, eris.Wrap(rows.Err(), "sqlite: iterate prices")
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func itemKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// compile-time interface checks
var (
	_ domain.ListRepository  = (*Store)(nil)
	_ domain.PriceRepository = (*Store)(nil)
)
