// internal/inference/scaler.go
package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// StandardScaler standardizes features as (x - mean) / scale.
type StandardScaler struct {
	mean         *mat.VecDense
	scale        *mat.VecDense
	featureNames []string
}

// NewStandardScaler builds a fitted scaler. A zero scale entry is treated as
// 1, matching a constant feature at fit time. featureNames may be nil.
func NewStandardScaler(mean, scale []float64, featureNames []string) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("scaler mean is empty")
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("scaler mean has %d entries but scale has %d", len(mean), len(scale))
	}
	if featureNames != nil && len(featureNames) != len(mean) {
		return nil, fmt.Errorf("scaler has %d feature names for %d columns", len(featureNames), len(mean))
	}

	s := make([]float64, len(scale))
	for i, v := range scale {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return nil, fmt.Errorf("scaler scale[%d] is not finite", i)
		case v == 0:
			s[i] = 1
		default:
			s[i] = v
		}
	}
	for i, v := range mean {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("scaler mean[%d] is not finite", i)
		}
	}

	return &StandardScaler{
		mean:         mat.NewVecDense(len(mean), append([]float64(nil), mean...)),
		scale:        mat.NewVecDense(len(s), s),
		featureNames: append([]string(nil), featureNames...),
	}, nil
}

// NumFeatures returns the number of columns the scaler was fitted on.
func (s *StandardScaler) NumFeatures() int {
	return s.mean.Len()
}

// FeatureNames returns the fitted column names, if recorded.
func (s *StandardScaler) FeatureNames() []string {
	if len(s.featureNames) == 0 {
		return nil
	}
	return append([]string(nil), s.featureNames...)
}

// Transform returns a standardized copy of x.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != s.mean.Len() {
		return nil, &SchemaMismatchError{
			Reason: fmt.Sprintf("scaler expects %d features, got %d", s.mean.Len(), len(x)),
		}
	}

	v := mat.NewVecDense(len(x), append([]float64(nil), x...))
	v.SubVec(v, s.mean)
	v.DivElemVec(v, s.scale)

	return mat.Col(nil, 0, v), nil
}
