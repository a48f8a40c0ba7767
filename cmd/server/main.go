package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Darksun1310/forensic-persona-linker/config"
	httpDelivery "github.com/Darksun1310/forensic-persona-linker/internal/delivery/http"
	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
	"github.com/Darksun1310/forensic-persona-linker/internal/infrastructure/artifact"
	"github.com/Darksun1310/forensic-persona-linker/internal/infrastructure/cache"
	"github.com/Darksun1310/forensic-persona-linker/internal/infrastructure/listingdb"
	"github.com/Darksun1310/forensic-persona-linker/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Persona Linker v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// The service refuses to start without a consistent bundle
	bundle, err := artifact.Load(cfg.Model.BundlePath)
	if err != nil {
		log.Fatalf("Failed to load model bundle %s: %v", cfg.Model.BundlePath, err)
	}
	rules, err := usecase.LoadReportRules(cfg.Report.RulesPath)
	if err != nil {
		log.Fatalf("Failed to load report rules: %v", err)
	}
	model, err := usecase.NewModel(bundle, rules)
	if err != nil {
		log.Fatalf("Failed to restore model: %v", err)
	}
	log.Printf("Model run %s (trained %s, %d terms)",
		bundle.RunID, bundle.CreatedAt.Format(time.RFC3339), len(bundle.Encoder.Terms))
	if bundle.Metrics != nil {
		log.Printf("Held-out accuracy: %.2f on %d pairs", bundle.Metrics.Accuracy, bundle.Metrics.TestSize)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	verdictCache := newCache(ctx, cfg.Cache)
	listings := openListings(ctx, cfg.Listings)
	cancel()

	// Initialize usecase layer
	linkingService := usecase.NewLinkingService(
		model,
		verdictCache,
		listings,
		usecase.LinkingServiceConfig{CacheTTL: cfg.Cache.TTL},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(linkingService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newCache returns nil when caching is disabled. An unreachable Redis
// downgrades to the in-memory cache.
func newCache(ctx context.Context, cfg config.CacheConfig) domain.CacheRepository {
	switch cfg.Type {
	case "none":
		log.Printf("Verdict cache disabled")
		return nil
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err == nil {
			log.Printf("Cache TTL: %s (redis)", cfg.TTL)
			return redisCache
		}
		log.Printf("WARNING: redis cache unavailable, falling back to memory: %v", err)
	}
	log.Printf("Cache TTL: %s (memory)", cfg.TTL)
	return cache.NewMemoryCache()
}

// openListings returns nil when vendor comparison is not configured
func openListings(ctx context.Context, cfg config.ListingsConfig) domain.ListingStore {
	if cfg.Driver == "" {
		log.Printf("Listing store disabled, vendor comparison will return 503")
		return nil
	}
	store, err := listingdb.Open(ctx, cfg.Driver, cfg.Target())
	if err != nil {
		log.Printf("WARNING: listing store unavailable, vendor comparison disabled: %v", err)
		return nil
	}
	log.Printf("Listing store: %s", cfg.Driver)
	return store
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
