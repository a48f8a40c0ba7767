// Package listingdb materialises listings into an indexed relational table
// and serves random per-vendor lookups from it.
package listingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const batchSize = 50

// columns in insert order; must match listingArgs
var columns = []string{
	"vendor", "category", "item", "description", "price",
	"origin", "destination", "rating", "remarks",
}

// Open returns the store for driver. target is a file path for sqlite and a
// DSN for postgres.
func Open(ctx context.Context, driver, target string) (domain.ListingStore, error) {
	switch driver {
	case DriverSQLite:
		store, err := OpenSQLite(ctx, target)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverPostgres:
		store, err := OpenPostgres(ctx, target)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown listings driver %q", driver)
	}
}

// sqlStore holds the SQL shared by both dialects; placeholder renders the
// n-th (1-based) bind parameter.
type sqlStore struct {
	db          *sql.DB
	placeholder func(n int) string
	clearStmt   string
}

func (s *sqlStore) replaceAll(ctx context.Context, listings []domain.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.clearStmt); err != nil {
		return fmt.Errorf("clear listings: %w", err)
	}
	for i := 0; i < len(listings); i += batchSize {
		end := min(i+batchSize, len(listings))
		if err := s.insertBatch(ctx, tx, listings[i:end]); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", i, end-1, err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) insertBatch(ctx context.Context, tx *sql.Tx, batch []domain.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*len(columns))

	for idx, l := range batch {
		base := idx * len(columns)
		holders := make([]string, len(columns))
		for c := range columns {
			holders[c] = s.placeholder(base + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(holders, ",")+")")
		valueArgs = append(valueArgs, listingArgs(l)...)
	}

	query := fmt.Sprintf("INSERT INTO listings (%s) VALUES %s",
		strings.Join(columns, ", "), strings.Join(valueStrings, ","))
	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

func (s *sqlStore) randomListing(ctx context.Context, vendor string) (*domain.Listing, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM listings WHERE vendor = %s ORDER BY RANDOM() LIMIT 1",
		strings.Join(columns, ", "), s.placeholder(1))

	var l domain.Listing
	err := s.db.QueryRowContext(ctx, query, vendor).Scan(
		&l.Vendor, &l.Category, &l.Item, &l.Description, &l.Price,
		&l.Origin, &l.Destination, &l.Rating, &l.Remarks,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVendorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query listing: %w", err)
	}
	return &l, nil
}

func listingArgs(l domain.Listing) []any {
	return []any{
		l.Vendor, l.Category, l.Item, l.Description, l.Price,
		l.Origin, l.Destination, l.Rating, l.Remarks,
	}
}
