package domain

import "strings"

// Listing is a single marketplace record. Price is kept as the raw text it
// arrived in; numeric parsing is the price normalizer's job.
type Listing struct {
	Vendor      string `json:"vendor,omitempty"`
	Category    string `json:"category"`
	Origin      string `json:"origin"`
	Price       string `json:"price"`
	Description string `json:"description"`

	// Carried through to the relational export only
	Item        string `json:"item,omitempty"`
	Destination string `json:"destination,omitempty"`
	Rating      string `json:"rating,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}

// ListingPair is a positionally fixed pair of listings. Label is 1 when both
// listings come from the same vendor and 0 otherwise; it is unset at inference.
type ListingPair struct {
	First  Listing
	Second Listing
	Label  int
}

// Pair labels
const (
	LabelDifferentVendor = 0
	LabelSameVendor      = 1
)

// NumFeatures is the width of the feature vector.
const NumFeatures = 4

// Feature column indices. The order is part of the trained model contract.
const (
	FeatureTextSimilarity = iota
	FeatureOriginMatch
	FeatureCategoryMatch
	FeatureLogPriceDiff
)

// FeatureNames lists the feature columns in vector order.
var FeatureNames = [NumFeatures]string{
	"text_similarity",
	"origin_match",
	"category_match",
	"log_price_diff",
}

// FeatureVector is the fixed-order similarity vector for one listing pair:
// [text_similarity, origin_match, category_match, log_price_diff].
type FeatureVector [NumFeatures]float64

// Slice returns a copy of the vector as a slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}

// MissingFields reports which of the fields required for feature extraction
// are empty on this listing.
func (l Listing) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(l.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(l.Origin) == "" {
		missing = append(missing, "origin")
	}
	if strings.TrimSpace(l.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(l.Price) == "" {
		missing = append(missing, "price")
	}
	return missing
}
