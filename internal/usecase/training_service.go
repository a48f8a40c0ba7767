package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// DefaultTestFraction is the share of pairs held out for evaluation
const DefaultTestFraction = 0.2

// TrainingConfig holds the knobs for one training run
type TrainingConfig struct {
	Seed           int64
	TestFraction   float64
	MaxFeatures    int
	PairsPerVendor int
	Classifier     LogisticConfig
}

// TrainingService turns a listing table into a model bundle
type TrainingService struct {
	config TrainingConfig
	now    func() time.Time
}

// NewTrainingService creates a training service, filling in defaults
func NewTrainingService(config TrainingConfig) *TrainingService {
	if config.TestFraction <= 0 || config.TestFraction >= 1 {
		config.TestFraction = DefaultTestFraction
	}
	if config.MaxFeatures <= 0 {
		config.MaxFeatures = DefaultMaxFeatures
	}
	if config.PairsPerVendor <= 0 {
		config.PairsPerVendor = DefaultPairsPerVendor
	}
	return &TrainingService{config: config, now: time.Now}
}

// Train runs the full pipeline.
// Flow: pairs -> fit encoder -> features -> stratified split -> fit scaler
// on train -> fit classifier -> evaluate on test -> bundle
func (s *TrainingService) Train(ctx context.Context, listings []domain.Listing) (*domain.ModelBundle, error) {
	log.Printf("[TRAIN] generating pairs from %d listings", len(listings))
	pairs, err := NewPairGenerator(s.config.Seed, s.config.PairsPerVendor).Generate(listings)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no vendor has two or more listings", domain.ErrInsufficientVendors)
	}
	log.Printf("[TRAIN] generated %d pairs", len(pairs))

	corpus := make([]string, 0, 2*len(pairs))
	for _, p := range pairs {
		corpus = append(corpus, p.First.Description)
	}
	for _, p := range pairs {
		corpus = append(corpus, p.Second.Description)
	}
	encoder := NewTextEncoder(s.config.MaxFeatures)
	if err := encoder.Fit(corpus); err != nil {
		return nil, err
	}
	log.Printf("[TRAIN] vocabulary size %d", encoder.VocabularySize())

	features, err := NewFeatureBuilder(encoder).BuildBatch(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}
	labels := make([]int, len(pairs))
	for i, p := range pairs {
		labels[i] = p.Label
	}

	trainIdx, testIdx := StratifiedSplit(labels, s.config.TestFraction, s.config.Seed)
	log.Printf("[TRAIN] split %d train / %d test", len(trainIdx), len(testIdx))

	scaler := NewMinMaxScaler()
	if err := scaler.Fit(pick(features, trainIdx)); err != nil {
		return nil, err
	}

	xTrain, err := scaledRows(scaler, pick(features, trainIdx))
	if err != nil {
		return nil, err
	}
	classifier := NewLogisticClassifier(s.config.Classifier)
	if err := classifier.Fit(xTrain, pick(labels, trainIdx)); err != nil {
		return nil, err
	}

	metrics, err := s.evaluate(classifier, scaler, features, labels, testIdx)
	if err != nil {
		return nil, err
	}
	metrics.TrainSize = len(trainIdx)
	log.Printf("[TRAIN] evaluation on held-out split:\n%s", FormatEvaluation(metrics))

	return &domain.ModelBundle{
		RunID:        uuid.NewString(),
		CreatedAt:    s.now().UTC(),
		FeatureNames: append([]string(nil), domain.FeatureNames[:]...),
		Encoder:      encoder.State(),
		Scaler:       scaler.State(),
		Classifier:   classifier.State(),
		Metrics:      metrics,
	}, nil
}

func (s *TrainingService) evaluate(
	classifier domain.PairClassifier,
	scaler *MinMaxScaler,
	features []domain.FeatureVector,
	labels []int,
	testIdx []int,
) (*domain.EvaluationReport, error) {
	xTest, err := scaledRows(scaler, pick(features, testIdx))
	if err != nil {
		return nil, err
	}
	predicted := make([]int, len(xTest))
	for i, row := range xTest {
		if predicted[i], err = classifier.Predict(row); err != nil {
			return nil, err
		}
	}
	return Evaluate(pick(labels, testIdx), predicted)
}

// StratifiedSplit shuffles each label's rows with the seed and holds out
// round(fraction * count) of each, keeping at least one row per label in
// training. Both index lists come back sorted.
func StratifiedSplit(labels []int, fraction float64, seed int64) (train, test []int) {
	byLabel := make(map[int][]int)
	for i, label := range labels {
		byLabel[label] = append(byLabel[label], i)
	}
	keys := make([]int, 0, len(byLabel))
	for label := range byLabel {
		keys = append(keys, label)
	}
	sort.Ints(keys)

	rng := rand.New(rand.NewSource(seed))
	for _, label := range keys {
		idx := byLabel[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(math.Round(fraction * float64(len(idx))))
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

func pick[T any](rows []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func scaledRows(scaler *MinMaxScaler, rows []domain.FeatureVector) ([][]float64, error) {
	scaled, err := scaler.TransformAll(rows)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(scaled))
	for i, row := range scaled {
		out[i] = row.Slice()
	}
	return out, nil
}
