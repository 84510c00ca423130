/*
Package sqlite provides a SQLite-backed implementation of the rule store.

PURPOSE:
  Implements procure.RuleStore using SQLite. Site rules live in a
  keyed table that is replaced whole on every SetRules; confirmed
  orders live in an append-only history table.

APPEND-ONLY ENFORCEMENT:
  The orders table is append-only:
  - No UPDATE statements on orders
  - No DELETE statements on orders

KEY TABLES:
  site_rules: One row per site, replaced whole (INSERT OR REPLACE)
  orders:     Immutable history of confirmed orders

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, serializing writes so two
  requests against the same site cannot lose order-history updates.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/procurement.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - procure/rules.go: Interface definition
  - procure/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/procurement-engine/procure"
)

// Store implements procure.RuleStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Site rules (one row per site, replaced whole)
	CREATE TABLE IF NOT EXISTS site_rules (
		site_id TEXT PRIMARY KEY,
		spend_ceiling TEXT NOT NULL,
		blacklist_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Orders (append-only history of confirmed orders)
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL,
		vendor_name TEXT NOT NULL,
		material TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price TEXT NOT NULL,
		status TEXT NOT NULL,
		approved_by_human BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_site
		ON orders(site_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RULE STORE (procure.RuleStore interface)
// =============================================================================

// SaveRules replaces any existing rule record for the site.
func (s *Store) SaveRules(ctx context.Context, rule procure.SiteRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blacklistJSON, err := json.Marshal(rule.Blacklist)
	if err != nil {
		return fmt.Errorf("failed to encode blacklist: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO site_rules (site_id, spend_ceiling, blacklist_json, updated_at)
		VALUES (?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		rule.SiteID,
		rule.SpendCeiling.Value.String(),
		string(blacklistJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save rules: %w", err)
	}
	return nil
}

// LoadRules returns the rule for a site, or NotFoundError.
func (s *Store) LoadRules(ctx context.Context, siteID procure.SiteID) (procure.SiteRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT spend_ceiling, blacklist_json FROM site_rules WHERE site_id = ?`

	var ceiling, blacklistJSON string
	err := s.db.QueryRowContext(ctx, query, siteID).Scan(&ceiling, &blacklistJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return procure.SiteRule{}, &procure.NotFoundError{SiteID: siteID}
	}
	if err != nil {
		return procure.SiteRule{}, fmt.Errorf("failed to load rules: %w", err)
	}

	var rule procure.SiteRule
	rule.SiteID = siteID
	if err := rule.SpendCeiling.UnmarshalJSON([]byte(ceiling)); err != nil {
		return procure.SiteRule{}, fmt.Errorf("failed to decode ceiling: %w", err)
	}
	if err := json.Unmarshal([]byte(blacklistJSON), &rule.Blacklist); err != nil {
		return procure.SiteRule{}, fmt.Errorf("failed to decode blacklist: %w", err)
	}
	return rule, nil
}

// AppendOrder adds a confirmed order to the history. Append-only.
func (s *Store) AppendOrder(ctx context.Context, order procure.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO orders
		(id, site_id, vendor_name, material, quantity, price, status, approved_by_human, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		order.ID,
		order.SiteID,
		order.VendorName,
		order.Material,
		order.Quantity,
		order.Price.Value.String(),
		order.Status,
		order.ApprovedByHuman,
		order.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append order: %w", err)
	}
	return nil
}

// Orders returns the site's confirmed orders, oldest first.
func (s *Store) Orders(ctx context.Context, siteID procure.SiteID) ([]procure.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, site_id, vendor_name, material, quantity, price, status, approved_by_human, created_at
		FROM orders
		WHERE site_id = ?
		ORDER BY created_at ASC, rowid ASC
	`
	rows, err := s.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []procure.OrderRecord
	for rows.Next() {
		var o procure.OrderRecord
		var price, createdAt string
		if err := rows.Scan(&o.ID, &o.SiteID, &o.VendorName, &o.Material, &o.Quantity,
			&price, &o.Status, &o.ApprovedByHuman, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if err := o.Price.UnmarshalJSON([]byte(price)); err != nil {
			return nil, fmt.Errorf("failed to decode price: %w", err)
		}
		if o.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
