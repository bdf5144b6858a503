package ml

import (
	"sort"

	"github.com/pkg/errors"
)

// A LabelEncoder maps labels to their index in the sorted list of known classes.
type LabelEncoder struct {
	Classes []float64 `json:"classes"`
}

// Validate sorts the classes and checks they are unique.
func (e *LabelEncoder) Validate() error {
	if len(e.Classes) == 0 {
		return errors.New("label encoder has no class")
	}

	sort.Float64s(e.Classes)
	for i := 1; i < len(e.Classes); i++ {
		if e.Classes[i] == e.Classes[i-1] {
			return errors.Errorf("duplicated class %v", e.Classes[i])
		}
	}
	return nil
}

// Known returns true if v is one of the classes.
func (e *LabelEncoder) Known(v float64) bool {
	_, ok := e.index(v)
	return ok
}

// Mode returns the most frequent class. Each class appears once so it is the smallest one.
func (e *LabelEncoder) Mode() float64 {
	return e.Classes[0]
}

// Transform returns the encoded value of v.
func (e *LabelEncoder) Transform(v float64) (float64, error) {
	i, ok := e.index(v)
	if !ok {
		return 0, errors.Errorf("unseen label %v", v)
	}
	return float64(i), nil
}

func (e *LabelEncoder) index(v float64) (int, bool) {
	i := sort.SearchFloat64s(e.Classes, v)
	return i, i < len(e.Classes) && e.Classes[i] == v
}
