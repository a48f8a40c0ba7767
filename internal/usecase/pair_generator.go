package usecase

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// DefaultPairsPerVendor caps positive and negative draws per vendor
const DefaultPairsPerVendor = 5

// PairGenerator synthesises labelled training pairs from listings grouped by vendor.
//
// Each vendor with at least two listings contributes min(count, cap) positive
// draws and the same number of negative draws. Draws are independent: a
// positive draw always picks two distinct listings, but the same pair may be
// drawn more than once when the cap exceeds the number of distinct pairs.
type PairGenerator struct {
	rng            *rand.Rand
	pairsPerVendor int
}

// NewPairGenerator creates a generator with a fixed seed
func NewPairGenerator(seed int64, pairsPerVendor int) *PairGenerator {
	if pairsPerVendor <= 0 {
		pairsPerVendor = DefaultPairsPerVendor
	}
	return &PairGenerator{
		rng:            rand.New(rand.NewSource(seed)),
		pairsPerVendor: pairsPerVendor,
	}
}

// Generate returns positives and negatives, vendor by vendor in name order
func (g *PairGenerator) Generate(listings []domain.Listing) ([]domain.ListingPair, error) {
	groups := GroupByVendor(listings)
	vendors := make([]string, 0, len(groups))
	for vendor := range groups {
		vendors = append(vendors, vendor)
	}
	sort.Strings(vendors)

	if len(vendors) < 2 {
		return nil, fmt.Errorf("generate pairs: %w (found %d)", domain.ErrInsufficientVendors, len(vendors))
	}

	var pairs []domain.ListingPair
	for _, vendor := range vendors {
		group := groups[vendor]
		if len(group) < 2 {
			continue
		}
		draws := min(len(group), g.pairsPerVendor)

		for k := 0; k < draws; k++ {
			i := g.rng.Intn(len(group))
			j := g.rng.Intn(len(group) - 1)
			if j >= i {
				j++
			}
			pairs = append(pairs, domain.ListingPair{
				First:  group[i],
				Second: group[j],
				Label:  domain.LabelSameVendor,
			})
		}

		for k := 0; k < draws; k++ {
			other := vendors[g.rng.Intn(len(vendors))]
			for other == vendor {
				other = vendors[g.rng.Intn(len(vendors))]
			}
			otherGroup := groups[other]
			pairs = append(pairs, domain.ListingPair{
				First:  group[g.rng.Intn(len(group))],
				Second: otherGroup[g.rng.Intn(len(otherGroup))],
				Label:  domain.LabelDifferentVendor,
			})
		}
	}
	return pairs, nil
}

// GroupByVendor buckets listings by vendor, keeping input order within a bucket.
// Listings without a vendor are skipped.
func GroupByVendor(listings []domain.Listing) map[string][]domain.Listing {
	groups := make(map[string][]domain.Listing)
	for _, l := range listings {
		if l.Vendor == "" {
			continue
		}
		groups[l.Vendor] = append(groups[l.Vendor], l)
	}
	return groups
}
