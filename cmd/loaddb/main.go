// Command loaddb replaces the relational listings table with the rows of a CSV export.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/Darksun1310/forensic-persona-linker/config"
	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
	"github.com/Darksun1310/forensic-persona-linker/internal/infrastructure/dataset"
	"github.com/Darksun1310/forensic-persona-linker/internal/infrastructure/listingdb"
	"github.com/Darksun1310/forensic-persona-linker/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	csvPath := flag.String("csv", cfg.Training.DataPath, "listings CSV to load")
	driver := flag.String("driver", cfg.Listings.Driver, "listing store driver: sqlite or postgres")
	target := flag.String("target", "", "database path or DSN (defaults to the configured one)")
	flag.Parse()

	if *driver == "" {
		log.Fatalf("[LOADDB] no driver configured, pass -driver")
	}
	if *target == "" {
		*target = config.ListingsConfig{Driver: *driver, Path: cfg.Listings.Path, DSN: cfg.Listings.DSN}.Target()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	listings, err := dataset.LoadFile(*csvPath)
	if err != nil {
		log.Fatalf("[DATASET] %v", err)
	}
	listings, dropped := usableListings(listings)
	log.Printf("[DATASET] %d usable listings, %d dropped", len(listings), dropped)

	store, err := listingdb.Open(ctx, *driver, *target)
	if err != nil {
		log.Fatalf("[LOADDB] %v", err)
	}

	err = store.ReplaceAll(ctx, listings)
	if closeErr := store.Close(); closeErr != nil {
		log.Printf("[LOADDB] close: %v", closeErr)
	}
	if err != nil {
		log.Fatalf("[LOADDB] %v", err)
	}
	log.Printf("[LOADDB] loaded %d listings into %s", len(listings), *driver)
}

// usableListings keeps the rows the linker can score, so vendor comparison
// never samples a listing with an empty field or an unreadable price.
func usableListings(listings []domain.Listing) ([]domain.Listing, int) {
	return dataset.Clean(listings, func(raw string) bool {
		_, ok := usecase.ParsePriceStrict(raw)
		return ok
	})
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stdout)
}
