package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrMissingFields is returned when required request keys are absent or null
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidPair is returned when a listing pair cannot be turned into features
	ErrInvalidPair = errors.New("invalid listing pair")

	// ErrReportGeneration is returned when the evidence report cannot be built
	ErrReportGeneration = errors.New("report generation failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrBundleNotFound is returned when no model bundle exists at the configured path
	ErrBundleNotFound = errors.New("model bundle not found")

	// ErrInvalidBundle is returned when a model bundle fails version, schema or checksum checks
	ErrInvalidBundle = errors.New("invalid model bundle")

	// ErrDatasetUnavailable is returned when the training data source cannot be read
	ErrDatasetUnavailable = errors.New("training dataset unavailable")

	// ErrInsufficientVendors is returned when negative pairs cannot be drawn
	ErrInsufficientVendors = errors.New("at least two vendors are required")

	// ErrNotFitted is returned when a model component is used before training
	ErrNotFitted = errors.New("model component not fitted")

	// ErrVendorNotFound is returned when a vendor has no stored listings
	ErrVendorNotFound = errors.New("vendor not found")

	// ErrCorruptListing is returned when a stored listing cannot be scored
	ErrCorruptListing = errors.New("stored listing is incomplete")

	// ErrListingStoreUnavailable is returned when vendor lookups are not configured
	ErrListingStoreUnavailable = errors.New("listing store not configured")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrLinkerAPIFailure is returned when a call to a remote linker API fails
	ErrLinkerAPIFailure = errors.New("linker API request failed")
)
