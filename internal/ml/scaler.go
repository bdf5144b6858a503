package ml

import (
	"github.com/pkg/errors"
)

// Scaler kinds, named after their scikit-learn counterparts.
const (
	StandardScaler = "standard"
	MinMaxScaler   = "minmax"
)

// A Scaler applies a per-feature affine transformation.
//
// standard: (x - mean) / scale
// minmax:   x * scale + min
type Scaler struct {
	Kind  string    `json:"kind"`
	Mean  []float64 `json:"mean,omitempty"`
	Min   []float64 `json:"min,omitempty"`
	Scale []float64 `json:"scale"`
}

// Validate checks the scaler parameters.
func (s *Scaler) Validate() error {
	var offsets []float64

	switch s.Kind {
	case StandardScaler:
		offsets = s.Mean
	case MinMaxScaler:
		offsets = s.Min
	default:
		return errors.Errorf("unsupported scaler kind %q", s.Kind)
	}

	if len(s.Scale) == 0 {
		return errors.New("empty scaler")
	}
	if len(offsets) != len(s.Scale) {
		return errors.Errorf("%s scaler has %d offsets for %d scales", s.Kind, len(offsets), len(s.Scale))
	}
	for i, scale := range s.Scale {
		if scale == 0 {
			return errors.Errorf("%s scaler has a zero scale at %d", s.Kind, i)
		}
	}
	return nil
}

// Dim returns the number of features handled by the scaler.
func (s *Scaler) Dim() int {
	return len(s.Scale)
}

// Transform scales x.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != s.Dim() {
		return nil, errors.Errorf("scaler expects %d features, got %d", s.Dim(), len(x))
	}

	y := make([]float64, len(x))
	for i, v := range x {
		switch s.Kind {
		case StandardScaler:
			y[i] = (v - s.Mean[i]) / s.Scale[i]
		case MinMaxScaler:
			y[i] = v*s.Scale[i] + s.Min[i]
		}
	}
	return y, nil
}

// InverseTransform reverts Transform.
func (s *Scaler) InverseTransform(x []float64) ([]float64, error) {
	if len(x) != s.Dim() {
		return nil, errors.Errorf("scaler expects %d features, got %d", s.Dim(), len(x))
	}

	y := make([]float64, len(x))
	for i, v := range x {
		switch s.Kind {
		case StandardScaler:
			y[i] = v*s.Scale[i] + s.Mean[i]
		case MinMaxScaler:
			y[i] = (v - s.Min[i]) / s.Scale[i]
		}
	}
	return y, nil
}
