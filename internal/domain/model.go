package domain

import "time"

// EncoderState is the learned vocabulary of the text similarity encoder.
// Terms are stored in index order; IDF[i] is the weight of Terms[i].
type EncoderState struct {
	Terms       []string  `json:"terms"`
	IDF         []float64 `json:"idf"`
	MaxFeatures int       `json:"max_features"`
}

// ScalerState holds the per-column training extremes of the min-max scaler.
type ScalerState struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// ClassifierState is the persisted form of a pairwise classifier.
type ClassifierState struct {
	Kind    string    `json:"kind"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// ClassMetrics is the evaluation summary for one label.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// EvaluationReport summarises classifier quality on the held-out split.
type EvaluationReport struct {
	TrainSize int            `json:"train_size"`
	TestSize  int            `json:"test_size"`
	Accuracy  float64        `json:"accuracy"`
	Classes   []ClassMetrics `json:"classes"`
}

// ModelBundle is the unit of persistence for a training run. The encoder,
// scaler and classifier are only valid together.
type ModelBundle struct {
	FormatVersion int               `json:"format_version"`
	RunID         string            `json:"run_id"`
	CreatedAt     time.Time         `json:"created_at"`
	FeatureNames  []string          `json:"feature_names"`
	Encoder       EncoderState      `json:"encoder"`
	Scaler        ScalerState       `json:"scaler"`
	Classifier    ClassifierState   `json:"classifier"`
	Metrics       *EvaluationReport `json:"metrics,omitempty"`
	Checksum      string            `json:"checksum"`
}
