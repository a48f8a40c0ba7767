package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching serialized verdicts
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PairClassifier is the opaque binary classifier behind the linker. Any
// implementation of this contract can be substituted without touching
// feature engineering.
type PairClassifier interface {
	Fit(features [][]float64, labels []int) error
	Predict(features []float64) (int, error)
	PredictProbability(features []float64) (float64, error)
	State() ClassifierState
}

// ListingStore is the relational listings table used for vendor lookups
type ListingStore interface {
	// ReplaceAll drops any existing rows and writes listings in one pass
	ReplaceAll(ctx context.Context, listings []Listing) error
	// RandomListing returns one randomly chosen listing for the vendor
	RandomListing(ctx context.Context, vendor string) (*Listing, error)
	Close() error
}

// LinkerAPI is a remote linker service, used by the operator CLI
type LinkerAPI interface {
	Predict(ctx context.Context, request *PredictRequest) (*PredictResponse, error)
	CompareVendors(ctx context.Context, vendor1, vendor2 string) (*VendorComparison, error)
}
