// internal/inference/encoder.go
package inference

import (
	"fmt"
)

// CategoricalEncoder maps a closed set of labels to integer codes and back.
// A label's code is its index in the fitted class list.
type CategoricalEncoder struct {
	field   string
	classes []string
	codes   map[string]int
}

// NewCategoricalEncoder builds an encoder for one field. Classes must be
// non-empty and unique.
func NewCategoricalEncoder(field string, classes []string) (*CategoricalEncoder, error) {
	if field == "" {
		return nil, fmt.Errorf("encoder field name is required")
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("encoder %s has no classes", field)
	}

	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := codes[c]; dup {
			return nil, fmt.Errorf("encoder %s has duplicate class %q", field, c)
		}
		codes[c] = i
	}

	return &CategoricalEncoder{
		field:   field,
		classes: append([]string(nil), classes...),
		codes:   codes,
	}, nil
}

// Field returns the field this encoder was fitted on.
func (e *CategoricalEncoder) Field() string {
	return e.field
}

// Classes returns a copy of the fitted labels in code order.
func (e *CategoricalEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Encode returns the code for a label.
func (e *CategoricalEncoder) Encode(value string) (int, error) {
	code, ok := e.codes[value]
	if !ok {
		return 0, &UnknownCategoryError{Field: e.field, Value: value}
	}
	return code, nil
}

// Decode returns the label for a code.
func (e *CategoricalEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", &SchemaMismatchError{
			Reason: fmt.Sprintf("code %d is outside the %d classes of encoder %s", code, len(e.classes), e.field),
		}
	}
	return e.classes[code], nil
}
