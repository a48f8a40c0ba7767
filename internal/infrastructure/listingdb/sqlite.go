package listingdb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// SQLiteStore is a file-backed listing store
type SQLiteStore struct {
	sqlStore
}

// OpenSQLite migrates the database file at path and opens it
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	mm, err := NewMigrationManager(path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	if err := mm.Up(); err != nil {
		mm.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	if err := mm.Close(); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer at a time avoids SQLITE_BUSY during bulk loads
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	log.Printf("[LISTINGDB] sqlite store ready at %s", path)
	return &SQLiteStore{sqlStore{
		db:          db,
		placeholder: func(int) string { return "?" },
		clearStmt:   "DELETE FROM listings",
	}}, nil
}

// ReplaceAll swaps the table contents for listings in one transaction
func (s *SQLiteStore) ReplaceAll(ctx context.Context, listings []domain.Listing) error {
	if err := s.replaceAll(ctx, listings); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

// RandomListing picks one of the vendor's listings uniformly at random
func (s *SQLiteStore) RandomListing(ctx context.Context, vendor string) (*domain.Listing, error) {
	return s.randomListing(ctx, vendor)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ domain.ListingStore = (*SQLiteStore)(nil)
