package usecase

import (
	"fmt"
	"math"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// Model is a loaded, read-only inference pipeline. It is built once at
// startup and shared by all requests.
type Model struct {
	runID      string
	builder    *FeatureBuilder
	scaler     *MinMaxScaler
	classifier domain.PairClassifier
	reports    *ReportGenerator
}

// NewModel restores the encoder, scaler and classifier from one bundle
func NewModel(bundle *domain.ModelBundle, rules *ReportRules) (*Model, error) {
	if bundle == nil {
		return nil, fmt.Errorf("%w: nil bundle", domain.ErrInvalidBundle)
	}
	if err := CheckFeatureNames(bundle.FeatureNames); err != nil {
		return nil, err
	}

	encoder, err := TextEncoderFromState(bundle.Encoder)
	if err != nil {
		return nil, err
	}
	scaler, err := MinMaxScalerFromState(bundle.Scaler)
	if err != nil {
		return nil, err
	}
	classifier, err := ClassifierFromState(bundle.Classifier)
	if err != nil {
		return nil, err
	}

	return &Model{
		runID:      bundle.RunID,
		builder:    NewFeatureBuilder(encoder),
		scaler:     scaler,
		classifier: classifier,
		reports:    NewReportGenerator(rules),
	}, nil
}

// CheckFeatureNames verifies a bundle was trained on the current column order
func CheckFeatureNames(names []string) error {
	if len(names) != domain.NumFeatures {
		return fmt.Errorf("%w: bundle has %d feature columns, want %d",
			domain.ErrInvalidBundle, len(names), domain.NumFeatures)
	}
	for i, name := range names {
		if name != domain.FeatureNames[i] {
			return fmt.Errorf("%w: feature column %d is %q, want %q",
				domain.ErrInvalidBundle, i, name, domain.FeatureNames[i])
		}
	}
	return nil
}

// RunID identifies the training run the model came from
func (m *Model) RunID() string {
	return m.runID
}

// Features returns the unscaled feature vector for a pair
func (m *Model) Features(pair domain.ListingPair) (domain.FeatureVector, error) {
	if err := ValidatePair(pair); err != nil {
		return domain.FeatureVector{}, err
	}
	return m.builder.Build(pair.First, pair.Second), nil
}

// Predict runs features, scaling, classification and the evidence report
func (m *Model) Predict(pair domain.ListingPair) (*domain.PredictResponse, error) {
	raw, err := m.Features(pair)
	if err != nil {
		return nil, err
	}
	scaled, err := m.scaler.Transform(raw)
	if err != nil {
		return nil, err
	}

	x := scaled.Slice()
	label, err := m.classifier.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("classify pair: %w", err)
	}
	probability, err := m.classifier.PredictProbability(x)
	if err != nil {
		return nil, fmt.Errorf("classify pair: %w", err)
	}

	report, err := m.reports.Generate(raw, pair)
	if err != nil {
		return nil, err
	}

	verdict := domain.VerdictNoMatch
	if label == domain.LabelSameVendor {
		verdict = domain.VerdictMatch
	}
	return &domain.PredictResponse{
		Verdict: verdict,
		Score:   int(math.Round(probability * 100)),
		Report:  report,
	}, nil
}
