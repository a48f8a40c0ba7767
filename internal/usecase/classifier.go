package usecase

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// ClassifierKindLogistic names the logistic regression classifier in model bundles
const ClassifierKindLogistic = "logistic_regression"

// Training defaults for logistic regression
const (
	defaultEpochs       = 3000
	defaultLearningRate = 1.0
	defaultL2           = 1e-4
	decisionThreshold   = 0.5
)

// LogisticConfig holds the gradient descent settings.
// L2 of zero selects the default penalty; a negative L2 disables it.
type LogisticConfig struct {
	Epochs       int
	LearningRate float64
	L2           float64
}

// LogisticClassifier is a class-weighted logistic regression.
//
// Prediction: p = 1 / (1 + exp(-(bias + w·x))). Training runs deterministic
// full-batch gradient descent where each sample is weighted by
// n / (2 * n_class) so both labels contribute equally to the loss.
type LogisticClassifier struct {
	config  LogisticConfig
	weights []float64
	bias    float64
	fitted  bool
}

// NewLogisticClassifier creates an unfitted classifier, filling in defaults
func NewLogisticClassifier(config LogisticConfig) *LogisticClassifier {
	if config.Epochs <= 0 {
		config.Epochs = defaultEpochs
	}
	if config.LearningRate <= 0 {
		config.LearningRate = defaultLearningRate
	}
	switch {
	case config.L2 == 0:
		config.L2 = defaultL2
	case config.L2 < 0:
		config.L2 = 0
	}
	return &LogisticClassifier{config: config}
}

// Fit trains on scaled feature rows and 0/1 labels
func (c *LogisticClassifier) Fit(features [][]float64, labels []int) error {
	if len(features) == 0 {
		return fmt.Errorf("fit classifier: no training rows")
	}
	if len(features) != len(labels) {
		return fmt.Errorf("fit classifier: %d rows but %d labels", len(features), len(labels))
	}
	width := len(features[0])
	var counts [2]int
	for i, row := range features {
		if len(row) != width {
			return fmt.Errorf("fit classifier: row %d has %d columns, want %d", i, len(row), width)
		}
		if labels[i] != 0 && labels[i] != 1 {
			return fmt.Errorf("fit classifier: row %d has label %d, want 0 or 1", i, labels[i])
		}
		counts[labels[i]]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return fmt.Errorf("fit classifier: need both labels, got %d negative and %d positive", counts[0], counts[1])
	}

	n := float64(len(features))
	classWeight := [2]float64{
		n / (2 * float64(counts[0])),
		n / (2 * float64(counts[1])),
	}

	weights := make([]float64, width)
	bias := 0.0
	gradW := make([]float64, width)
	for epoch := 0; epoch < c.config.Epochs; epoch++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0
		for i, row := range features {
			p := sigmoid(bias + dot(weights, row))
			diff := (p - float64(labels[i])) * classWeight[labels[i]]
			for j, x := range row {
				gradW[j] += diff * x
			}
			gradB += diff
		}
		for j := range weights {
			weights[j] -= c.config.LearningRate * (gradW[j]/n + c.config.L2*weights[j])
		}
		bias -= c.config.LearningRate * gradB / n
	}

	c.weights = weights
	c.bias = bias
	c.fitted = true
	return nil
}

// PredictProbability returns the probability of label 1
func (c *LogisticClassifier) PredictProbability(features []float64) (float64, error) {
	if !c.fitted {
		return 0, fmt.Errorf("classifier: %w", domain.ErrNotFitted)
	}
	if len(features) != len(c.weights) {
		return 0, fmt.Errorf("classifier: got %d features, want %d", len(features), len(c.weights))
	}
	return sigmoid(c.bias + dot(c.weights, features)), nil
}

// Predict returns 1 when the class-1 probability reaches 0.5
func (c *LogisticClassifier) Predict(features []float64) (int, error) {
	p, err := c.PredictProbability(features)
	if err != nil {
		return 0, err
	}
	if p >= decisionThreshold {
		return domain.LabelSameVendor, nil
	}
	return domain.LabelDifferentVendor, nil
}

// State exports the learned parameters
func (c *LogisticClassifier) State() domain.ClassifierState {
	return domain.ClassifierState{
		Kind:    ClassifierKindLogistic,
		Weights: append([]float64(nil), c.weights...),
		Bias:    c.bias,
	}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1 + ez)
}

func dot(a, b []float64) float64 {
	var sum float64
	for i, v := range a {
		sum += v * b[i]
	}
	return sum
}

// ClassifierLoader restores a classifier from its persisted state
type ClassifierLoader func(state domain.ClassifierState) (domain.PairClassifier, error)

var (
	classifierMu      sync.RWMutex
	classifierLoaders = map[string]ClassifierLoader{
		ClassifierKindLogistic: loadLogistic,
	}
)

// RegisterClassifier makes an alternative classifier kind loadable from bundles
func RegisterClassifier(kind string, loader ClassifierLoader) {
	classifierMu.Lock()
	defer classifierMu.Unlock()
	classifierLoaders[kind] = loader
}

// ClassifierKinds lists the registered kinds
func ClassifierKinds() []string {
	classifierMu.RLock()
	defer classifierMu.RUnlock()
	kinds := make([]string, 0, len(classifierLoaders))
	for k := range classifierLoaders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ClassifierFromState restores a classifier of any registered kind
func ClassifierFromState(state domain.ClassifierState) (domain.PairClassifier, error) {
	classifierMu.RLock()
	loader, ok := classifierLoaders[state.Kind]
	classifierMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown classifier kind %q", domain.ErrInvalidBundle, state.Kind)
	}
	return loader(state)
}

func loadLogistic(state domain.ClassifierState) (domain.PairClassifier, error) {
	if len(state.Weights) != domain.NumFeatures {
		return nil, fmt.Errorf("%w: classifier has %d weights, want %d",
			domain.ErrInvalidBundle, len(state.Weights), domain.NumFeatures)
	}
	return &LogisticClassifier{
		config:  LogisticConfig{Epochs: defaultEpochs, LearningRate: defaultLearningRate, L2: defaultL2},
		weights: append([]float64(nil), state.Weights...),
		bias:    state.Bias,
		fitted:  true,
	}, nil
}
