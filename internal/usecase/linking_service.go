package usecase

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// LinkingServiceConfig holds configuration for the linking service
type LinkingServiceConfig struct {
	CacheTTL time.Duration
}

// LinkingService answers pairwise and vendor-level linking questions
type LinkingService struct {
	model    *Model
	cache    domain.CacheRepository
	listings domain.ListingStore
	cacheTTL time.Duration
}

// NewLinkingService creates a linking service. cache and listings may be nil.
func NewLinkingService(
	model *Model,
	cache domain.CacheRepository,
	listings domain.ListingStore,
	config LinkingServiceConfig,
) *LinkingService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &LinkingService{
		model:    model,
		cache:    cache,
		listings: listings,
		cacheTTL: cacheTTL,
	}
}

// ModelRunID reports which training run is serving
func (s *LinkingService) ModelRunID() string {
	return s.model.RunID()
}

// Predict scores a request pair.
// Flow: validate -> check cache -> features -> scale -> classify -> report -> cache
func (s *LinkingService) Predict(ctx context.Context, request *domain.PredictRequest) (*domain.PredictResponse, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}
	if missing := request.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingFields, strings.Join(missing, ", "))
	}

	pair := request.Pair()
	cacheKey := s.generateCacheKey(pair)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached, nil
	}

	response, err := s.model.Predict(pair)
	if err != nil {
		return nil, err
	}

	if err := s.setInCache(ctx, cacheKey, response); err != nil {
		log.Printf("[LINK] cache write failed for %s: %v", cacheKey, err)
	}
	return response, nil
}

// CompareVendors samples one random listing per vendor and scores the pair
func (s *LinkingService) CompareVendors(ctx context.Context, vendor1, vendor2 string) (*domain.VendorComparison, error) {
	vendor1 = strings.TrimSpace(vendor1)
	vendor2 = strings.TrimSpace(vendor2)
	if vendor1 == "" || vendor2 == "" {
		return nil, fmt.Errorf("%w: both vendor names are required", domain.ErrInvalidRequest)
	}
	if s.listings == nil {
		return nil, domain.ErrListingStoreUnavailable
	}

	first, err := s.listings.RandomListing(ctx, vendor1)
	if err != nil {
		return nil, fmt.Errorf("vendor %q: %w", vendor1, err)
	}
	second, err := s.listings.RandomListing(ctx, vendor2)
	if err != nil {
		return nil, fmt.Errorf("vendor %q: %w", vendor2, err)
	}

	response, err := s.Predict(ctx, domain.NewPredictRequest(*first, *second))
	if errors.Is(err, domain.ErrInvalidPair) {
		// the vendors were valid; the stored rows were not
		return nil, fmt.Errorf("%w: %s vs %s: %v", domain.ErrCorruptListing, vendor1, vendor2, err)
	}
	if err != nil {
		return nil, err
	}
	return &domain.VendorComparison{
		PredictResponse: *response,
		Listings:        [2]domain.Listing{*first, *second},
	}, nil
}

// generateCacheKey hashes the pair fields in request order.
// Format: "verdict:{run_id}:{blake2b-256 hex}"
func (s *LinkingService) generateCacheKey(pair domain.ListingPair) string {
	fields := []string{
		pair.First.Description, pair.Second.Description,
		pair.First.Origin, pair.Second.Origin,
		pair.First.Category, pair.Second.Category,
		pair.First.Price, pair.Second.Price,
	}
	sum := blake2b.Sum256([]byte(strings.Join(fields, "\x1f")))
	return fmt.Sprintf("verdict:%s:%s", s.model.RunID(), hex.EncodeToString(sum[:]))
}

func (s *LinkingService) getFromCache(ctx context.Context, key string) (*domain.PredictResponse, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Printf("[LINK] cache read failed for %s: %v", key, err)
		}
		return nil, err
	}
	var response domain.PredictResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("%w: corrupt entry: %v", domain.ErrCacheMiss, err)
	}
	return &response, nil
}

func (s *LinkingService) setInCache(ctx context.Context, key string, response *domain.PredictResponse) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
