// internal/inference/logistic.go
package inference

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const KindLogisticRegression = "logistic_regression"

// LogisticRegression is a fitted binary linear classifier.
type LogisticRegression struct {
	classes   []int
	coef      *mat.VecDense
	intercept float64
}

type logisticRegressionJSON struct {
	Kind      string    `json:"kind"`
	Classes   []int     `json:"classes"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// DecodeLogisticRegression parses and validates a serialized model.
func DecodeLogisticRegression(data []byte) (*LogisticRegression, error) {
	var raw logisticRegressionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode logistic regression: %w", err)
	}
	return NewLogisticRegression(raw.Classes, raw.Coef, raw.Intercept)
}

func NewLogisticRegression(classes []int, coef []float64, intercept float64) (*LogisticRegression, error) {
	if err := validateClasses(classes); err != nil {
		return nil, err
	}
	if len(classes) != 2 {
		return nil, fmt.Errorf("logistic regression supports 2 classes, got %d", len(classes))
	}
	if len(coef) == 0 {
		return nil, fmt.Errorf("logistic regression has no coefficients")
	}
	for i, c := range coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return nil, fmt.Errorf("intercept is not finite")
	}

	return &LogisticRegression{
		classes:   append([]int(nil), classes...),
		coef:      mat.NewVecDense(len(coef), append([]float64(nil), coef...)),
		intercept: intercept,
	}, nil
}

func (l *LogisticRegression) Kind() string     { return KindLogisticRegression }
func (l *LogisticRegression) NumFeatures() int { return l.coef.Len() }
func (l *LogisticRegression) Classes() []int   { return append([]int(nil), l.classes...) }

// DecisionFunction returns coef·x + intercept.
func (l *LogisticRegression) DecisionFunction(x []float64) (float64, error) {
	if err := checkWidth(KindLogisticRegression, l.coef.Len(), x); err != nil {
		return 0, err
	}
	return mat.Dot(l.coef, mat.NewVecDense(len(x), append([]float64(nil), x...))) + l.intercept, nil
}

// Predict returns classes[1] for a positive decision value.
func (l *LogisticRegression) Predict(x []float64) (int, error) {
	d, err := l.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if d > 0 {
		return l.classes[1], nil
	}
	return l.classes[0], nil
}
