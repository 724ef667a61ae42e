// internal/artifacts/codec.go
package artifacts

import (
	"encoding/json"
	"fmt"

	"loan-approval-workers/internal/inference"
)

// ScalerKind is the only scaler format understood by DecodeScaler.
const ScalerKind = "standard_scaler"

type encoderJSON struct {
	Field   string   `json:"field"`
	Classes []string `json:"classes"`
}

type scalerJSON struct {
	Kind         string    `json:"kind"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	FeatureNames []string  `json:"feature_names,omitempty"`
}

// DecodeEncoder parses {"field": ..., "classes": [...]}.
func DecodeEncoder(data []byte) (*inference.CategoricalEncoder, error) {
	var raw encoderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode label encoder: %w", err)
	}
	return inference.NewCategoricalEncoder(raw.Field, raw.Classes)
}

// EncodeEncoder is the inverse of DecodeEncoder.
func EncodeEncoder(enc *inference.CategoricalEncoder) ([]byte, error) {
	return json.Marshal(encoderJSON{Field: enc.Field(), Classes: enc.Classes()})
}

// DecodeScaler parses a standard scaler with mean, scale and optional feature names.
func DecodeScaler(data []byte) (*inference.StandardScaler, error) {
	var raw scalerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if raw.Kind != "" && raw.Kind != ScalerKind {
		return nil, fmt.Errorf("unsupported scaler kind %q", raw.Kind)
	}
	return inference.NewStandardScaler(raw.Mean, raw.Scale, raw.FeatureNames)
}

// DecodeColumns parses a JSON array of column names.
func DecodeColumns(data []byte) (inference.ColumnOrder, error) {
	var columns []string
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, fmt.Errorf("decode column order: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("column order is empty")
	}
	return inference.ColumnOrder(columns), nil
}
