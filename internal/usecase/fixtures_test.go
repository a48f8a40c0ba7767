package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

type syntheticVendor struct {
	name     string
	phrase   string
	origin   string
	category string
	price    float64
}

var syntheticVendors = []syntheticVendor{
	{"alpha", "stealth vacuum sealed kush grown indoor organic", "Netherlands", "Cannabis", 20},
	{"bravo", "pharmaceutical grade pressed tablets blister packed", "Germany", "Ecstasy", 60},
	{"charlie", "uncut crystal shards lab tested purity", "Canada", "Stimulants", 150},
	{"delta", "premium counterfeit banknotes watermark uv passing", "Colombia", "Fraud", 300},
	{"echo", "verified bank login logs balance checked", "Russia", "Accounts", 700},
	{"foxtrot", "heavy duty replica watches sapphire movement", "China", "Jewelry", 1200},
}

var variantWords = []string{"fresh", "restock", "bulk", "sample", "special"}

// syntheticListings returns five listings per vendor. Within a vendor the
// wording, origin, category and price band are shared.
func syntheticListings() []domain.Listing {
	var listings []domain.Listing
	for _, v := range syntheticVendors {
		for k, word := range variantWords {
			listings = append(listings, domain.Listing{
				Vendor:      v.name,
				Category:    v.category,
				Origin:      v.origin,
				Price:       fmt.Sprintf("$%.2f", v.price+float64(k)*0.5),
				Description: v.phrase + " " + word + " batch",
			})
		}
	}
	return listings
}

var (
	bundleOnce   sync.Once
	sharedBundle *domain.ModelBundle
	bundleErr    error
)

// trainedBundle trains once per test binary on the synthetic listings
func trainedBundle(t *testing.T) *domain.ModelBundle {
	t.Helper()
	bundleOnce.Do(func() {
		svc := NewTrainingService(TrainingConfig{Seed: 42})
		svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
		sharedBundle, bundleErr = svc.Train(context.Background(), syntheticListings())
	})
	require.NoError(t, bundleErr)
	return sharedBundle
}

func trainedModel(t *testing.T) *Model {
	t.Helper()
	model, err := NewModel(trainedBundle(t), nil)
	require.NoError(t, err)
	return model
}

func fittedEncoder(t *testing.T) *TextEncoder {
	t.Helper()
	enc := NewTextEncoder(0)
	require.NoError(t, enc.Fit([]string{
		"stealth vacuum sealed kush",
		"pressed tablets blister packed",
		"vacuum sealed tablets",
	}))
	return enc
}

func listing(desc, origin, category, price string) domain.Listing {
	return domain.Listing{Description: desc, Origin: origin, Category: category, Price: price}
}
