package usecase

import (
	"fmt"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// MinMaxScaler maps each feature column onto [0, 1] using training extremes.
// Values outside the training range extrapolate past [0, 1]; nothing is clipped.
type MinMaxScaler struct {
	min    domain.FeatureVector
	max    domain.FeatureVector
	fitted bool
}

// NewMinMaxScaler creates an unfitted scaler
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{}
}

// MinMaxScalerFromState restores a fitted scaler
func MinMaxScalerFromState(state domain.ScalerState) (*MinMaxScaler, error) {
	if len(state.Min) != domain.NumFeatures || len(state.Max) != domain.NumFeatures {
		return nil, fmt.Errorf("%w: scaler has %d/%d columns, want %d",
			domain.ErrInvalidBundle, len(state.Min), len(state.Max), domain.NumFeatures)
	}
	s := &MinMaxScaler{fitted: true}
	copy(s.min[:], state.Min)
	copy(s.max[:], state.Max)
	return s, nil
}

// Fit records per-column minimum and maximum
func (s *MinMaxScaler) Fit(rows []domain.FeatureVector) error {
	if len(rows) == 0 {
		return fmt.Errorf("fit scaler: no rows")
	}
	s.min, s.max = rows[0], rows[0]
	for _, row := range rows[1:] {
		for col, v := range row {
			if v < s.min[col] {
				s.min[col] = v
			}
			if v > s.max[col] {
				s.max[col] = v
			}
		}
	}
	s.fitted = true
	return nil
}

// Transform scales one vector. A column that was constant in training maps to 0.
func (s *MinMaxScaler) Transform(v domain.FeatureVector) (domain.FeatureVector, error) {
	if !s.fitted {
		return v, fmt.Errorf("scaler: %w", domain.ErrNotFitted)
	}
	var out domain.FeatureVector
	for col, x := range v {
		span := s.max[col] - s.min[col]
		if span == 0 {
			out[col] = 0
			continue
		}
		out[col] = (x - s.min[col]) / span
	}
	return out, nil
}

// TransformAll scales a matrix row by row
func (s *MinMaxScaler) TransformAll(rows []domain.FeatureVector) ([]domain.FeatureVector, error) {
	out := make([]domain.FeatureVector, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// State exports the fitted extremes
func (s *MinMaxScaler) State() domain.ScalerState {
	return domain.ScalerState{Min: s.min.Slice(), Max: s.max.Slice()}
}
