package usecase

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

//go:embed report_rules.yaml
var defaultReportRules []byte

// Grade is the strength label and canned reasoning for one report entry
type Grade struct {
	Strength  string `yaml:"strength"`
	Reasoning string `yaml:"reasoning"`
}

// ThresholdBand grades values strictly above or strictly below a threshold
type ThresholdBand struct {
	Above *float64 `yaml:"above,omitempty"`
	Below *float64 `yaml:"below,omitempty"`
	Grade `yaml:",inline"`
}

func (b ThresholdBand) matches(value float64) bool {
	if b.Above != nil {
		return value > *b.Above
	}
	return value < *b.Below
}

// BandedRule grades a continuous value through ordered bands
type BandedRule struct {
	Feature   string          `yaml:"feature"`
	Bands     []ThresholdBand `yaml:"bands"`
	Otherwise Grade           `yaml:"otherwise"`
}

// Grade returns the first matching band, or the fallback
func (r BandedRule) Grade(value float64) Grade {
	for _, band := range r.Bands {
		if band.matches(value) {
			return band.Grade
		}
	}
	return r.Otherwise
}

// MatchRule grades an exact-match flag
type MatchRule struct {
	Feature  string `yaml:"feature"`
	Match    Grade  `yaml:"match"`
	Mismatch Grade  `yaml:"mismatch"`
}

// Grade picks the match or mismatch grade
func (r MatchRule) Grade(matched bool) Grade {
	if matched {
		return r.Match
	}
	return r.Mismatch
}

// ReportRules are the threshold tables behind the evidence report
type ReportRules struct {
	TextSimilarity  BandedRule `yaml:"text_similarity"`
	ShippingOrigin  MatchRule  `yaml:"shipping_origin"`
	ProductCategory MatchRule  `yaml:"product_category"`
	PriceDifference BandedRule `yaml:"price_difference"`
}

// DefaultReportRules returns the built-in thresholds
func DefaultReportRules() *ReportRules {
	rules, err := ParseReportRules(defaultReportRules)
	if err != nil {
		panic(fmt.Sprintf("embedded report rules: %v", err))
	}
	return rules
}

// LoadReportRules reads an override file, or the built-in rules when path is empty
func LoadReportRules(path string) (*ReportRules, error) {
	if path == "" {
		return DefaultReportRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report rules: %w", err)
	}
	return ParseReportRules(data)
}

// ParseReportRules decodes and validates a rules document
func ParseReportRules(data []byte) (*ReportRules, error) {
	var rules ReportRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse report rules: %w", err)
	}
	if err := rules.validate(); err != nil {
		return nil, fmt.Errorf("invalid report rules: %w", err)
	}
	return &rules, nil
}

func (r *ReportRules) validate() error {
	for _, rule := range []BandedRule{r.TextSimilarity, r.PriceDifference} {
		if rule.Feature == "" {
			return fmt.Errorf("banded rule without feature name")
		}
		for i, band := range rule.Bands {
			if (band.Above == nil) == (band.Below == nil) {
				return fmt.Errorf("%s band %d: set exactly one of above/below", rule.Feature, i)
			}
			if band.Strength == "" {
				return fmt.Errorf("%s band %d: missing strength", rule.Feature, i)
			}
		}
		if rule.Otherwise.Strength == "" {
			return fmt.Errorf("%s: missing fallback strength", rule.Feature)
		}
	}
	for _, rule := range []MatchRule{r.ShippingOrigin, r.ProductCategory} {
		if rule.Feature == "" || rule.Match.Strength == "" || rule.Mismatch.Strength == "" {
			return fmt.Errorf("match rule %q is incomplete", rule.Feature)
		}
	}
	return nil
}

// ReportGenerator turns raw feature values into graded evidence statements
type ReportGenerator struct {
	rules *ReportRules
}

// NewReportGenerator creates a generator; nil rules means the built-in tables
func NewReportGenerator(rules *ReportRules) *ReportGenerator {
	if rules == nil {
		rules = DefaultReportRules()
	}
	return &ReportGenerator{rules: rules}
}

// Generate builds the four report entries in fixed order: writing style,
// shipping origin, product category, price difference. It works on the
// unscaled vector; the price entry uses the raw relative difference.
func (g *ReportGenerator) Generate(v domain.FeatureVector, pair domain.ListingPair) ([]domain.ReportEntry, error) {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: feature %s is %v", domain.ErrReportGeneration, domain.FeatureNames[i], x)
		}
	}

	report := make([]domain.ReportEntry, 0, domain.NumFeatures)

	similarity := v[domain.FeatureTextSimilarity]
	grade := g.rules.TextSimilarity.Grade(similarity)
	report = append(report, domain.ReportEntry{
		Feature:   g.rules.TextSimilarity.Feature,
		Value:     fmt.Sprintf("%d%% similarity", int(math.Round(similarity*100))),
		Strength:  grade.Strength,
		Reasoning: grade.Reasoning,
	})

	report = append(report, matchEntry(g.rules.ShippingOrigin,
		v[domain.FeatureOriginMatch] == 1, pair.First.Origin, pair.Second.Origin))
	report = append(report, matchEntry(g.rules.ProductCategory,
		v[domain.FeatureCategoryMatch] == 1, pair.First.Category, pair.Second.Category))

	price1 := ParsePrice(pair.First.Price)
	price2 := ParsePrice(pair.Second.Price)
	diff := math.Abs(price1 - price2)
	grade = g.rules.PriceDifference.Grade(RelativePriceDifference(price1, price2))
	report = append(report, domain.ReportEntry{
		Feature:   g.rules.PriceDifference.Feature,
		Value:     fmt.Sprintf("$%.2f", diff),
		Strength:  grade.Strength,
		Reasoning: grade.Reasoning,
	})

	return report, nil
}

// RelativePriceDifference is |p1-p2| / max(p1, p2), or 0 when the larger price is 0
func RelativePriceDifference(price1, price2 float64) float64 {
	maxPrice := math.Max(price1, price2)
	if maxPrice <= 0 {
		return 0
	}
	return math.Abs(price1-price2) / maxPrice
}

func matchEntry(rule MatchRule, matched bool, first, second string) domain.ReportEntry {
	grade := rule.Grade(matched)
	value := fmt.Sprintf("No Match ('%s' vs '%s')", first, second)
	if matched {
		value = fmt.Sprintf("Match ('%s')", first)
	}
	return domain.ReportEntry{
		Feature:   rule.Feature,
		Value:     value,
		Strength:  grade.Strength,
		Reasoning: grade.Reasoning,
	}
}
