// internal/inference/forest.go
package inference

import (
	"encoding/json"
	"fmt"
)

const KindRandomForest = "random_forest"

// leafNode marks a node without children in the flattened tree arrays.
const leafNode = -1

// DecisionTree is a fitted binary tree in flattened array form. Node 0 is the
// root; a sample goes left when x[feature] <= threshold.
type DecisionTree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

func (t *DecisionTree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("tree arrays differ in length")
	}

	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leafNode || right == leafNode {
			if left != right {
				return fmt.Errorf("node %d has a single child", i)
			}
			if len(t.Value[i]) != nClasses {
				return fmt.Errorf("leaf %d has %d class counts, want %d", i, len(t.Value[i]), nClasses)
			}
			continue
		}
		// Children always follow their parent, so traversal cannot loop.
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has out-of-range children %d/%d", i, left, right)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, f, nFeatures)
		}
	}
	return nil
}

func (t *DecisionTree) leaf(x []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != leafNode {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// RandomForest averages per-tree class distributions and picks the most
// probable class.
type RandomForest struct {
	classes   []int
	nFeatures int
	trees     []DecisionTree
}

type randomForestJSON struct {
	Kind      string         `json:"kind"`
	Classes   []int          `json:"classes"`
	NFeatures int            `json:"n_features"`
	Trees     []DecisionTree `json:"trees"`
}

// DecodeRandomForest parses and validates a serialized forest.
func DecodeRandomForest(data []byte) (*RandomForest, error) {
	var raw randomForestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode random forest: %w", err)
	}
	return NewRandomForest(raw.Classes, raw.NFeatures, raw.Trees)
}

// NewRandomForest validates the trees against the class and feature counts.
func NewRandomForest(classes []int, nFeatures int, trees []DecisionTree) (*RandomForest, error) {
	if err := validateClasses(classes); err != nil {
		return nil, err
	}
	if nFeatures <= 0 {
		return nil, fmt.Errorf("random forest n_features must be positive")
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("random forest has no trees")
	}
	for i := range trees {
		if err := trees[i].validate(nFeatures, len(classes)); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}

	return &RandomForest{
		classes:   append([]int(nil), classes...),
		nFeatures: nFeatures,
		trees:     trees,
	}, nil
}

func (f *RandomForest) Kind() string     { return KindRandomForest }
func (f *RandomForest) NumFeatures() int { return f.nFeatures }
func (f *RandomForest) Classes() []int   { return append([]int(nil), f.classes...) }

// PredictProba returns the mean of the normalized leaf distributions.
func (f *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if err := checkWidth(KindRandomForest, f.nFeatures, x); err != nil {
		return nil, err
	}

	proba := make([]float64, len(f.classes))
	for i := range f.trees {
		counts := f.trees[i].leaf(x)
		var total float64
		for _, c := range counts {
			total += c
		}
		if total <= 0 {
			continue
		}
		for k, c := range counts {
			proba[k] += c / total
		}
	}
	for k := range proba {
		proba[k] /= float64(len(f.trees))
	}
	return proba, nil
}

// Predict returns the class with the highest mean probability. Ties go to
// the lower index.
func (f *RandomForest) Predict(x []float64) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for k := 1; k < len(proba); k++ {
		if proba[k] > proba[best] {
			best = k
		}
	}
	return f.classes[best], nil
}
