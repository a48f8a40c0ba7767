package listingdb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

const (
	pingAttempts = 10
	pingInterval = 2 * time.Second
)

// PostgresStore is a listing store backed by PostgreSQL
type PostgresStore struct {
	sqlStore
}

// OpenPostgres connects to dsn, waiting for the server to come up, and
// creates the schema when missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < pingAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(pingInterval):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{sqlStore{
		db:          db,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		clearStmt:   "TRUNCATE listings RESTART IDENTITY",
	}}
	if err := ps.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	log.Printf("[LISTINGDB] postgres store ready")
	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id          SERIAL PRIMARY KEY,
			vendor      TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			item        TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			price       TEXT NOT NULL DEFAULT '',
			origin      TEXT NOT NULL DEFAULT '',
			destination TEXT NOT NULL DEFAULT '',
			rating      TEXT NOT NULL DEFAULT '',
			remarks     TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_listings_vendor ON listings(vendor);
	`)
	return err
}

// ReplaceAll swaps the table contents for listings in one transaction
func (ps *PostgresStore) ReplaceAll(ctx context.Context, listings []domain.Listing) error {
	if err := ps.replaceAll(ctx, listings); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

// RandomListing picks one of the vendor's listings uniformly at random
func (ps *PostgresStore) RandomListing(ctx context.Context, vendor string) (*domain.Listing, error) {
	return ps.randomListing(ctx, vendor)
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

var _ domain.ListingStore = (*PostgresStore)(nil)
