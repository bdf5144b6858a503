// Package ml loads the trained model artifacts and runs the inference.
package ml

import (
	"context"
	"encoding/json"

	"github.com/mdouchement/bakuwaki/internal/storage"
	"github.com/pkg/errors"
)

// Artifact filenames.
const (
	ModelFile        = "model.txt"
	ScalerXFile      = "scaler_x.json"
	ScalerYFile      = "scaler_y.json"
	LabelEncoderFile = "label_encoder.json"
	FeaturesFile     = "features.json"
)

// Files lists all the artifacts needed by the service.
var Files = []string{ModelFile, ScalerXFile, ScalerYFile, LabelEncoderFile, FeaturesFile}

// Artifacts holds everything produced by the training.
type Artifacts struct {
	Model    Regressor
	ScalerX  *Scaler
	ScalerY  *Scaler
	Encoder  *LabelEncoder
	Features []string
}

// Load reads the artifacts stored in the given container.
func Load(ctx context.Context, backend storage.Backend, container string) (*Artifacts, error) {
	r, err := backend.Reader(ctx, container, ModelFile)
	if err != nil {
		return nil, errors.Wrapf(err, "missing %s", ModelFile)
	}
	defer r.Close()

	model, err := LoadLightGBM(r)
	if err != nil {
		return nil, err
	}

	return load(ctx, backend, container, model)
}

func load(ctx context.Context, backend storage.Backend, container string, model Regressor) (*Artifacts, error) {
	a := Artifacts{Model: model}

	for _, artifact := range []struct {
		filename string
		v        interface{}
	}{
		{filename: ScalerXFile, v: &a.ScalerX},
		{filename: ScalerYFile, v: &a.ScalerY},
		{filename: LabelEncoderFile, v: &a.Encoder},
		{filename: FeaturesFile, v: &a.Features},
	} {
		if err := decode(ctx, backend, container, artifact.filename, artifact.v); err != nil {
			return nil, err
		}
	}

	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid artifacts")
	}
	return &a, nil
}

// Validate checks the consistency between the artifacts.
func (a *Artifacts) Validate() error {
	if a.Model == nil || a.ScalerX == nil || a.ScalerY == nil || a.Encoder == nil {
		return errors.New("incomplete artifacts")
	}
	if len(a.Features) == 0 {
		return errors.New("empty feature list")
	}

	if err := a.ScalerX.Validate(); err != nil {
		return errors.Wrap(err, ScalerXFile)
	}
	if err := a.ScalerY.Validate(); err != nil {
		return errors.Wrap(err, ScalerYFile)
	}
	if err := a.Encoder.Validate(); err != nil {
		return errors.Wrap(err, LabelEncoderFile)
	}

	if a.ScalerX.Dim() != len(a.Features) {
		return errors.Errorf("%s has %d features, %s has %d", ScalerXFile, a.ScalerX.Dim(), FeaturesFile, len(a.Features))
	}
	if a.Model.NFeatures() != len(a.Features) {
		return errors.Errorf("model has %d features, %s has %d", a.Model.NFeatures(), FeaturesFile, len(a.Features))
	}
	if a.ScalerY.Dim() != 1 {
		return errors.Errorf("%s must have a single target, got %d", ScalerYFile, a.ScalerY.Dim())
	}
	return nil
}

// Predict returns the unscaled predictions of the unscaled feature vectors.
func (a *Artifacts) Predict(matrix [][]float64) ([]float64, error) {
	predictions := make([]float64, 0, len(matrix))

	for _, x := range matrix {
		scaled, err := a.ScalerX.Transform(x)
		if err != nil {
			return nil, errors.Wrap(err, "could not scale features")
		}

		y, err := a.ScalerY.InverseTransform([]float64{a.Model.Predict(scaled)})
		if err != nil {
			return nil, errors.Wrap(err, "could not unscale prediction")
		}
		predictions = append(predictions, y[0])
	}

	return predictions, nil
}

func decode(ctx context.Context, backend storage.Backend, container, filename string, v interface{}) error {
	r, err := backend.Reader(ctx, container, filename)
	if err != nil {
		return errors.Wrapf(err, "missing %s", filename)
	}
	defer r.Close()

	return errors.Wrapf(json.NewDecoder(r).Decode(v), "could not decode %s", filename)
}
