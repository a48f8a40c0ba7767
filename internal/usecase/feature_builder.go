package usecase

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// FeatureBuilder turns listing pairs into fixed-order feature vectors
type FeatureBuilder struct {
	encoder *TextEncoder
}

// NewFeatureBuilder creates a builder around a fitted encoder
func NewFeatureBuilder(encoder *TextEncoder) *FeatureBuilder {
	return &FeatureBuilder{encoder: encoder}
}

// ValidatePair rejects pairs that cannot be turned into features
func ValidatePair(pair domain.ListingPair) error {
	var problems []string
	for _, side := range []struct {
		name    string
		listing domain.Listing
	}{{"listing1", pair.First}, {"listing2", pair.Second}} {
		for _, field := range side.listing.MissingFields() {
			problems = append(problems, side.name+"."+field)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: empty %s", domain.ErrInvalidPair, strings.Join(problems, ", "))
	}
	return nil
}

// Build computes [text_similarity, origin_match, category_match, log_price_diff]
func (b *FeatureBuilder) Build(first, second domain.Listing) domain.FeatureVector {
	price1 := ParsePrice(first.Price)
	price2 := ParsePrice(second.Price)

	var v domain.FeatureVector
	v[domain.FeatureTextSimilarity] = Similarity(
		b.encoder.Encode(first.Description),
		b.encoder.Encode(second.Description),
	)
	v[domain.FeatureOriginMatch] = boolFeature(first.Origin == second.Origin)
	v[domain.FeatureCategoryMatch] = boolFeature(first.Category == second.Category)
	v[domain.FeatureLogPriceDiff] = math.Log1p(math.Abs(price1 - price2))
	return v
}

// BuildBatch builds one vector per pair. Rows are computed concurrently but
// each lands in its own slot, so the result equals calling Build in order.
func (b *FeatureBuilder) BuildBatch(ctx context.Context, pairs []domain.ListingPair) ([]domain.FeatureVector, error) {
	for i, pair := range pairs {
		if err := ValidatePair(pair); err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
	}

	out := make([]domain.FeatureVector, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = b.Build(pairs[i].First, pairs[i].Second)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
