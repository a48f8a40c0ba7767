package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// mockCache is a hand-rolled CacheRepository
type mockCache struct {
	data     map[string][]byte
	ttls     map[string]time.Duration
	getErr   error
	setErr   error
	getCalls int
	setCalls int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// mockStore is a hand-rolled ListingStore keyed by vendor
type mockStore struct {
	byVendor map[string]domain.Listing
	err      error
}

func (m *mockStore) ReplaceAll(context.Context, []domain.Listing) error { return nil }

func (m *mockStore) RandomListing(_ context.Context, vendor string) (*domain.Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.byVendor[vendor]
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	return &l, nil
}

func (m *mockStore) Close() error { return nil }

func text(s string) *domain.LooseText {
	t := domain.LooseText(s)
	return &t
}

func identicalRequest() *domain.PredictRequest {
	return &domain.PredictRequest{
		Desc1:     text("stealth vacuum sealed kush grown indoor organic"),
		Desc2:     text("stealth vacuum sealed kush grown indoor organic"),
		Origin1:   text("Netherlands"),
		Origin2:   text("Netherlands"),
		Category1: text("Cannabis"),
		Category2: text("Cannabis"),
		Price1:    text("$20"),
		Price2:    text("20"),
	}
}

func TestNewLinkingService(t *testing.T) {
	svc := NewLinkingService(trainedModel(t), nil, nil, LinkingServiceConfig{})
	assert.Equal(t, 24*time.Hour, svc.cacheTTL)
	assert.Equal(t, trainedBundle(t).RunID, svc.ModelRunID())
}

func TestLinkingServicePredict(t *testing.T) {
	model := trainedModel(t)
	ctx := context.Background()

	t.Run("rejects nil request", func(t *testing.T) {
		svc := NewLinkingService(model, nil, nil, LinkingServiceConfig{})
		_, err := svc.Predict(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("names missing fields", func(t *testing.T) {
		svc := NewLinkingService(model, nil, nil, LinkingServiceConfig{})
		request := identicalRequest()
		request.Origin2 = nil
		request.Price1 = nil

		_, err := svc.Predict(ctx, request)
		require.ErrorIs(t, err, domain.ErrMissingFields)
		assert.Contains(t, err.Error(), "origin2, price1")
	})

	t.Run("rejects empty values", func(t *testing.T) {
		svc := NewLinkingService(model, nil, nil, LinkingServiceConfig{})
		request := identicalRequest()
		request.Category1 = text("")

		_, err := svc.Predict(ctx, request)
		assert.ErrorIs(t, err, domain.ErrInvalidPair)
	})

	t.Run("works without a cache", func(t *testing.T) {
		svc := NewLinkingService(model, nil, nil, LinkingServiceConfig{})
		response, err := svc.Predict(ctx, identicalRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.VerdictMatch, response.Verdict)
		assert.Greater(t, response.Score, 50)
	})

	t.Run("stores verdicts with configured ttl", func(t *testing.T) {
		cache := newMockCache()
		svc := NewLinkingService(model, cache, nil, LinkingServiceConfig{CacheTTL: time.Hour})

		response, err := svc.Predict(ctx, identicalRequest())
		require.NoError(t, err)

		key := svc.generateCacheKey(identicalRequest().Pair())
		require.Contains(t, cache.data, key)
		assert.Equal(t, time.Hour, cache.ttls[key])

		var cached domain.PredictResponse
		require.NoError(t, json.Unmarshal(cache.data[key], &cached))
		assert.Equal(t, *response, cached)
	})

	t.Run("serves cached verdicts", func(t *testing.T) {
		cache := newMockCache()
		svc := NewLinkingService(model, cache, nil, LinkingServiceConfig{})
		key := svc.generateCacheKey(identicalRequest().Pair())
		cache.data[key] = []byte(`{"verdict":"No Match","score":7,"report":[]}`)

		response, err := svc.Predict(ctx, identicalRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.VerdictNoMatch, response.Verdict)
		assert.Equal(t, 7, response.Score)
		assert.Zero(t, cache.setCalls)
	})

	t.Run("recomputes corrupt entries", func(t *testing.T) {
		cache := newMockCache()
		svc := NewLinkingService(model, cache, nil, LinkingServiceConfig{})
		key := svc.generateCacheKey(identicalRequest().Pair())
		cache.data[key] = []byte("not json")

		response, err := svc.Predict(ctx, identicalRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.VerdictMatch, response.Verdict)
		assert.Equal(t, 1, cache.setCalls)
	})

	t.Run("cache failures do not fail the request", func(t *testing.T) {
		cache := newMockCache()
		cache.getErr = domain.ErrCacheUnavailable
		cache.setErr = errors.New("connection reset")
		svc := NewLinkingService(model, cache, nil, LinkingServiceConfig{})

		response, err := svc.Predict(ctx, identicalRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.VerdictMatch, response.Verdict)
		assert.Equal(t, 1, cache.getCalls)
		assert.Equal(t, 1, cache.setCalls)
	})
}

func TestGenerateCacheKey(t *testing.T) {
	svc := NewLinkingService(trainedModel(t), nil, nil, LinkingServiceConfig{})
	pair := identicalRequest().Pair()

	key := svc.generateCacheKey(pair)
	assert.True(t, strings.HasPrefix(key, "verdict:"+svc.ModelRunID()+":"))
	assert.Len(t, strings.TrimPrefix(key, "verdict:"+svc.ModelRunID()+":"), 64)
	assert.Equal(t, key, svc.generateCacheKey(pair))

	swapped := domain.ListingPair{First: pair.Second, Second: pair.First}
	assert.NotEqual(t, key, svc.generateCacheKey(swapped))

	// field boundaries are part of the key
	a := domain.ListingPair{First: listing("ab", "c", "x", "1"), Second: listing("d", "c", "x", "1")}
	b := domain.ListingPair{First: listing("a", "c", "x", "1"), Second: listing("bd", "c", "x", "1")}
	assert.NotEqual(t, svc.generateCacheKey(a), svc.generateCacheKey(b))
}

func TestLinkingServiceCompareVendors(t *testing.T) {
	model := trainedModel(t)
	ctx := context.Background()
	store := &mockStore{byVendor: map[string]domain.Listing{
		"alpha": {Vendor: "alpha", Description: "stealth vacuum sealed kush grown indoor organic", Origin: "Netherlands", Category: "Cannabis", Price: "$20"},
		"bravo": {Vendor: "bravo", Description: "pharmaceutical grade pressed tablets blister packed", Origin: "Germany", Category: "Ecstasy", Price: "$60"},
	}}

	t.Run("scores one sampled listing per vendor", func(t *testing.T) {
		svc := NewLinkingService(model, nil, store, LinkingServiceConfig{})
		comparison, err := svc.CompareVendors(ctx, " alpha ", "bravo")
		require.NoError(t, err)

		assert.Equal(t, "alpha", comparison.Listings[0].Vendor)
		assert.Equal(t, "bravo", comparison.Listings[1].Vendor)
		assert.Equal(t, domain.VerdictNoMatch, comparison.Verdict)
		assert.Len(t, comparison.Report, 4)
	})

	t.Run("same vendor is a potential match", func(t *testing.T) {
		svc := NewLinkingService(model, nil, store, LinkingServiceConfig{})
		comparison, err := svc.CompareVendors(ctx, "alpha", "alpha")
		require.NoError(t, err)
		assert.Equal(t, domain.VerdictMatch, comparison.Verdict)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name    string
			store   domain.ListingStore
			v1, v2  string
			wantErr error
		}{
			{"blank vendor", store, "alpha", "  ", domain.ErrInvalidRequest},
			{"no store", nil, "alpha", "bravo", domain.ErrListingStoreUnavailable},
			{"unknown vendor", store, "alpha", "ghost", domain.ErrVendorNotFound},
			{"store failure", &mockStore{err: errors.New("db closed")}, "alpha", "bravo", nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := NewLinkingService(model, nil, tt.store, LinkingServiceConfig{})
				_, err := svc.CompareVendors(ctx, tt.v1, tt.v2)
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			})
		}
	})

	t.Run("incomplete stored listing is a server fault", func(t *testing.T) {
		broken := &mockStore{byVendor: map[string]domain.Listing{
			"alpha":   store.byVendor["alpha"],
			"charlie": {Vendor: "charlie", Description: "bulk tabs", Origin: "", Category: "Ecstasy", Price: "$5"},
		}}
		svc := NewLinkingService(model, nil, broken, LinkingServiceConfig{})
		_, err := svc.CompareVendors(ctx, "alpha", "charlie")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCorruptListing)
		assert.NotErrorIs(t, err, domain.ErrInvalidPair)
	})

	t.Run("unknown vendor error names the vendor", func(t *testing.T) {
		svc := NewLinkingService(model, nil, store, LinkingServiceConfig{})
		_, err := svc.CompareVendors(ctx, "ghost", "alpha")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"ghost"`)
	})
}
