package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Verdict labels
const (
	VerdictMatch   = "Potential Match"
	VerdictNoMatch = "No Match"
)

// RequiredPredictFields lists the request keys that must be present and non-null.
var RequiredPredictFields = []string{
	"desc1", "desc2", "origin1", "origin2", "category1", "category2", "price1", "price2",
}

// LooseText accepts a JSON string, number or boolean and keeps its textual form.
// Prices in particular arrive either as "$19.99" or as 19.99.
type LooseText string

// UnmarshalJSON implements json.Unmarshaler
func (t *LooseText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = LooseText(s)
		return nil
	case '{', '[':
		return fmt.Errorf("expected text or number, got %s", string(data[:1]))
	default:
		*t = LooseText(data)
		return nil
	}
}

// PredictRequest is the pairwise inference payload. Fields are pointers so a
// missing key can be told apart from an empty value.
type PredictRequest struct {
	Desc1     *LooseText `json:"desc1"`
	Desc2     *LooseText `json:"desc2"`
	Origin1   *LooseText `json:"origin1"`
	Origin2   *LooseText `json:"origin2"`
	Category1 *LooseText `json:"category1"`
	Category2 *LooseText `json:"category2"`
	Price1    *LooseText `json:"price1"`
	Price2    *LooseText `json:"price2"`
}

// NewPredictRequest builds a request from two listings.
func NewPredictRequest(first, second Listing) *PredictRequest {
	text := func(s string) *LooseText {
		t := LooseText(s)
		return &t
	}
	return &PredictRequest{
		Desc1:     text(first.Description),
		Desc2:     text(second.Description),
		Origin1:   text(first.Origin),
		Origin2:   text(second.Origin),
		Category1: text(first.Category),
		Category2: text(second.Category),
		Price1:    text(first.Price),
		Price2:    text(second.Price),
	}
}

// Missing returns the names of required keys that were absent or null.
func (r *PredictRequest) Missing() []string {
	if r == nil {
		return append([]string(nil), RequiredPredictFields...)
	}
	fields := []*LooseText{r.Desc1, r.Desc2, r.Origin1, r.Origin2, r.Category1, r.Category2, r.Price1, r.Price2}
	var missing []string
	for i, f := range fields {
		if f == nil {
			missing = append(missing, RequiredPredictFields[i])
		}
	}
	return missing
}

// Pair converts the request into a listing pair. Call Missing first.
func (r *PredictRequest) Pair() ListingPair {
	deref := func(t *LooseText) string {
		if t == nil {
			return ""
		}
		return string(*t)
	}
	return ListingPair{
		First: Listing{
			Description: deref(r.Desc1),
			Origin:      deref(r.Origin1),
			Category:    deref(r.Category1),
			Price:       deref(r.Price1),
		},
		Second: Listing{
			Description: deref(r.Desc2),
			Origin:      deref(r.Origin2),
			Category:    deref(r.Category2),
			Price:       deref(r.Price2),
		},
	}
}

// ReportEntry is one graded line of the evidence report.
type ReportEntry struct {
	Feature   string `json:"feature"`
	Value     string `json:"value"`
	Strength  string `json:"strength"`
	Reasoning string `json:"reasoning"`
}

// PredictResponse is the verdict payload returned to clients.
type PredictResponse struct {
	Verdict string        `json:"verdict"`
	Score   int           `json:"score"` // round(probability * 100)
	Report  []ReportEntry `json:"report"`
}

// VendorCompareRequest asks for a comparison of two vendors by name
type VendorCompareRequest struct {
	Vendor1 string `json:"vendor1" binding:"required"`
	Vendor2 string `json:"vendor2" binding:"required"`
}

// VendorComparison is a verdict for one sampled listing of each vendor
type VendorComparison struct {
	PredictResponse
	Listings [2]Listing `json:"listings"`
}
