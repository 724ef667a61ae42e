// internal/inference/classifier.go
package inference

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Classifier maps a scaled feature vector to an encoded class label.
type Classifier interface {
	Kind() string
	NumFeatures() int
	Classes() []int
	Predict(x []float64) (int, error)
}

// ClassifierDecoder builds a classifier from its serialized form.
type ClassifierDecoder func(data []byte) (Classifier, error)

// ClassifierDecoders is keyed by the "kind" field of a serialized classifier.
var ClassifierDecoders = map[string]ClassifierDecoder{
	KindRandomForest: func(data []byte) (Classifier, error) {
		return DecodeRandomForest(data)
	},
	KindLogisticRegression: func(data []byte) (Classifier, error) {
		return DecodeLogisticRegression(data)
	},
}

// DecodeClassifier reads the "kind" field and dispatches to its decoder.
func DecodeClassifier(data []byte) (Classifier, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode classifier header: %w", err)
	}
	if head.Kind == "" {
		return nil, fmt.Errorf("classifier kind is required")
	}

	decode, ok := ClassifierDecoders[head.Kind]
	if !ok {
		return nil, fmt.Errorf("unsupported classifier kind %q (supported: %v)", head.Kind, SupportedClassifierKinds())
	}
	return decode(data)
}

// SupportedClassifierKinds lists the registered classifier kinds.
func SupportedClassifierKinds() []string {
	kinds := make([]string, 0, len(ClassifierDecoders))
	for k := range ClassifierDecoders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func validateClasses(classes []int) error {
	if len(classes) < 2 {
		return fmt.Errorf("classifier needs at least 2 classes, got %d", len(classes))
	}
	seen := make(map[int]struct{}, len(classes))
	for _, c := range classes {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("classifier has duplicate class %d", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func checkWidth(kind string, want int, x []float64) error {
	if len(x) != want {
		return &SchemaMismatchError{
			Reason: fmt.Sprintf("%s expects %d features, got %d", kind, want, len(x)),
		}
	}
	return nil
}
