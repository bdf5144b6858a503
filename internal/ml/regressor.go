package ml

import (
	"bufio"
	"io"

	"github.com/dmitryikh/leaves"
	"github.com/pkg/errors"
)

// A Regressor predicts a scalar from a feature vector.
type Regressor interface {
	Predict(x []float64) float64
	NFeatures() int
}

type lightgbm struct {
	ensemble *leaves.Ensemble
}

// LoadLightGBM reads a LightGBM model saved in text format.
func LoadLightGBM(r io.Reader) (Regressor, error) {
	ensemble, err := leaves.LGEnsembleFromReader(bufio.NewReader(r), true)
	if err != nil {
		return nil, errors.Wrap(err, "could not load LightGBM model")
	}

	return &lightgbm{ensemble: ensemble}, nil
}

func (m *lightgbm) Predict(x []float64) float64 {
	return m.ensemble.PredictSingle(x, 0)
}

func (m *lightgbm) NFeatures() int {
	return m.ensemble.NFeatures()
}
