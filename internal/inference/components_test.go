// internal/inference/components_test.go
package inference

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Encoder Tests
// ==========================

func TestCategoricalEncoder_RoundTrip(t *testing.T) {
	enc, err := NewCategoricalEncoder(FieldDependents, []string{"0", "1", "2", "3+"})
	require.NoError(t, err)

	for want, label := range enc.Classes() {
		code, err := enc.Encode(label)
		require.NoError(t, err)
		assert.Equal(t, want, code)

		decoded, err := enc.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, label, decoded)
	}
}

func TestCategoricalEncoder_Errors(t *testing.T) {
	enc, err := NewCategoricalEncoder(FieldLoanStatus, []string{"N", "Y"})
	require.NoError(t, err)

	_, err = enc.Encode("Maybe")
	assert.True(t, errors.Is(err, ErrUnknownCategory))

	_, err = enc.Decode(2)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	_, err = enc.Decode(-1)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	_, err = NewCategoricalEncoder(FieldGender, []string{"Male", "Male"})
	assert.ErrorContains(t, err, "duplicate class")

	_, err = NewCategoricalEncoder(FieldGender, nil)
	assert.ErrorContains(t, err, "no classes")

	_, err = NewCategoricalEncoder("", []string{"a"})
	assert.Error(t, err)
}

func TestCategoricalEncoder_ClassesIsCopy(t *testing.T) {
	enc, err := NewCategoricalEncoder(FieldGender, []string{"Female", "Male"})
	require.NoError(t, err)

	classes := enc.Classes()
	classes[0] = "changed"

	code, err := enc.Encode("Female")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

// ==========================
// Derived Feature Tests
// ==========================

func TestDerive_FiniteForNonNegativeInputs(t *testing.T) {
	values := []float64{0, 1e-9, 0.5, 1, 150, 5000, 81000, 1e12}

	for _, a := range values {
		for _, c := range values {
			for _, l := range values {
				d := Derive(a, c, l)
				assert.False(t, math.IsNaN(d.LogTotalIncome) || math.IsInf(d.LogTotalIncome, 0))
				assert.False(t, math.IsNaN(d.LogLoanAmount) || math.IsInf(d.LogLoanAmount, 0))
				assert.False(t, math.IsNaN(d.LoanToIncomeRatio) || math.IsInf(d.LoanToIncomeRatio, 0))
				assert.GreaterOrEqual(t, d.TotalIncome+1, 1.0)
				assert.GreaterOrEqual(t, d.LogTotalIncome, 0.0)
				assert.GreaterOrEqual(t, d.LogLoanAmount, 0.0)
			}
		}
	}
}

func TestDerive_ZeroInputs(t *testing.T) {
	d := Derive(0, 0, 0)
	assert.Equal(t, 0.0, d.TotalIncome)
	assert.Equal(t, 0.0, d.LogTotalIncome)
	assert.Equal(t, 0.0, d.LogLoanAmount)
	assert.Equal(t, 0.0, d.LoanToIncomeRatio)
}

// ==========================
// FeatureVector Tests
// ==========================

func TestFeatureVector_ReorderIsIdempotent(t *testing.T) {
	values := make([]float64, len(FeatureNames))
	for i := range values {
		values[i] = float64(i) * 1.5
	}
	fv, err := NewFeatureVector(FeatureNames, values)
	require.NoError(t, err)

	order := ColumnOrder(FeatureNames)
	once, err := fv.Reorder(order)
	require.NoError(t, err)
	twice, err := once.Reorder(order)
	require.NoError(t, err)

	assert.Equal(t, fv.Names(), once.Names())
	assert.Equal(t, fv.Values(), once.Values())
	assert.Equal(t, once.Names(), twice.Names())
	assert.Equal(t, once.Values(), twice.Values())
}

func TestFeatureVector_Reorder(t *testing.T) {
	fv, err := NewFeatureVector([]string{"a", "b", "c"}, []float64{1, 2, 3})
	require.NoError(t, err)

	out, err := fv.Reorder(ColumnOrder{"c", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, out.Names())
	assert.Equal(t, []float64{3, 1, 2}, out.Values())

	tests := []struct {
		name    string
		order   ColumnOrder
		missing []string
		extra   []string
	}{
		{"unknown column", ColumnOrder{"c", "a", "z"}, []string{"b"}, []string{"z"}},
		{"short order", ColumnOrder{"c", "a"}, []string{"b"}, nil},
		{"duplicate column hides a missing one", ColumnOrder{"a", "a", "c"}, nil, []string{"a"}},
		{"extra column", ColumnOrder{"a", "b", "c", "d"}, nil, []string{"d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := fv.Reorder(tt.order)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaMismatch))
			assert.Zero(t, out.Len())

			var smErr *SchemaMismatchError
			require.True(t, errors.As(err, &smErr))
			assert.Equal(t, tt.missing, smErr.Missing)
			assert.Equal(t, tt.extra, smErr.Extra)
		})
	}
}

func TestNewFeatureVector_LengthMismatch(t *testing.T) {
	_, err := NewFeatureVector([]string{"a"}, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestColumnOrder_Validate(t *testing.T) {
	assert.NoError(t, ColumnOrder(FeatureNames).Validate(FeatureNames))

	err := ColumnOrder{"a", "b"}.Validate([]string{"a", "c"})
	var smErr *SchemaMismatchError
	require.True(t, errors.As(err, &smErr))
	assert.Equal(t, []string{"c"}, smErr.Missing)
	assert.Equal(t, []string{"b"}, smErr.Extra)
	assert.Contains(t, err.Error(), "missing: c")
	assert.Contains(t, err.Error(), "unexpected: b")
}

// ==========================
// Scaler Tests
// ==========================

func TestStandardScaler_Transform(t *testing.T) {
	s, err := NewStandardScaler([]float64{1, 10, 5}, []float64{2, 0, 0.5}, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, s.NumFeatures())
	assert.Equal(t, []string{"a", "b", "c"}, s.FeatureNames())

	input := []float64{3, 12, 4}
	out, err := s.Transform(input)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, -2}, out, 1e-12)
	assert.Equal(t, []float64{3, 12, 4}, input, "input must not be modified")

	_, err = s.Transform([]float64{1})
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestNewStandardScaler_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		mean  []float64
		scale []float64
		names []string
	}{
		{"empty", nil, nil, nil},
		{"length mismatch", []float64{1, 2}, []float64{1}, nil},
		{"names mismatch", []float64{1}, []float64{1}, []string{"a", "b"}},
		{"NaN scale", []float64{1}, []float64{math.NaN()}, nil},
		{"infinite mean", []float64{math.Inf(-1)}, []float64{1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStandardScaler(tt.mean, tt.scale, tt.names)
			assert.Error(t, err)
		})
	}
}

// ==========================
// Classifier Tests
// ==========================

func TestDecodeClassifier_RandomForest(t *testing.T) {
	data := []byte(`{
		"kind": "random_forest",
		"classes": [0, 1],
		"n_features": 2,
		"trees": [{
			"children_left":  [1, -1, -1],
			"children_right": [2, -1, -1],
			"feature":        [1, -2, -2],
			"threshold":      [0.0, -2, -2],
			"value":          [[5, 5], [4, 1], [1, 4]]
		}]
	}`)

	clf, err := DecodeClassifier(data)
	require.NoError(t, err)
	assert.Equal(t, KindRandomForest, clf.Kind())
	assert.Equal(t, 2, clf.NumFeatures())
	assert.Equal(t, []int{0, 1}, clf.Classes())

	class, err := clf.Predict([]float64{9, -0.3})
	require.NoError(t, err)
	assert.Equal(t, 0, class)

	class, err = clf.Predict([]float64{9, 0.3})
	require.NoError(t, err)
	assert.Equal(t, 1, class)

	proba, err := clf.(*RandomForest).PredictProba([]float64{0, 0.3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.2, 0.8}, proba, 1e-12)

	_, err = clf.Predict([]float64{1})
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestDecodeClassifier_LogisticRegression(t *testing.T) {
	data := []byte(`{"kind":"logistic_regression","classes":[0,1],"coef":[1.5,-2],"intercept":0.25}`)

	clf, err := DecodeClassifier(data)
	require.NoError(t, err)
	assert.Equal(t, KindLogisticRegression, clf.Kind())

	d, err := clf.(*LogisticRegression).DecisionFunction([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, -0.25, d, 1e-12)

	class, err := clf.Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0, class)

	class, err = clf.Predict([]float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, class)
}

func TestDecodeClassifier_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		errMsg string
	}{
		{"not json", `{`, "decode classifier header"},
		{"missing kind", `{"classes":[0,1]}`, "kind is required"},
		{"unknown kind", `{"kind":"svm"}`, "unsupported classifier kind"},
		{"single class", `{"kind":"logistic_regression","classes":[1],"coef":[1]}`, "at least 2 classes"},
		{"no coefficients", `{"kind":"logistic_regression","classes":[0,1],"coef":[]}`, "no coefficients"},
		{"no trees", `{"kind":"random_forest","classes":[0,1],"n_features":1,"trees":[]}`, "no trees"},
		{
			"child points backwards",
			`{"kind":"random_forest","classes":[0,1],"n_features":1,"trees":[{"children_left":[0,-1],"children_right":[1,-1],"feature":[0,-2],"threshold":[0,-2],"value":[[1,1],[1,1]]}]}`,
			"out-of-range children",
		},
		{
			"feature out of range",
			`{"kind":"random_forest","classes":[0,1],"n_features":1,"trees":[{"children_left":[1,-1,-1],"children_right":[2,-1,-1],"feature":[3,-2,-2],"threshold":[0,-2,-2],"value":[[1,1],[1,0],[0,1]]}]}`,
			"splits on feature",
		},
		{
			"leaf class count wrong",
			`{"kind":"random_forest","classes":[0,1],"n_features":1,"trees":[{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[-2],"value":[[1]]}]}`,
			"class counts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeClassifier([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSupportedClassifierKinds(t *testing.T) {
	assert.Equal(t, []string{KindLogisticRegression, KindRandomForest}, SupportedClassifierKinds())
}

// ==========================
// Error Mapping Tests
// ==========================

func TestToStandardError(t *testing.T) {
	stdErr := ToStandardError(&UnknownCategoryError{Field: FieldGender, Value: "Other"})
	assert.Equal(t, "UNKNOWN_CATEGORY", string(stdErr.Code))
	assert.Equal(t, FieldGender, stdErr.Metadata["field"])
	assert.Equal(t, "Other", stdErr.Metadata["value"])

	stdErr = ToStandardError(&InvalidInputError{Field: FieldLoanAmount, Reason: "must be non-negative"})
	assert.Equal(t, "INVALID_INPUT", string(stdErr.Code))
	assert.Equal(t, "must be non-negative", stdErr.Details)

	stdErr = ToStandardError(&SchemaMismatchError{Missing: []string{"Gender"}})
	assert.Equal(t, "SCHEMA_MISMATCH", string(stdErr.Code))
	assert.False(t, stdErr.Retryable)

	stdErr = ToStandardError(errors.New("unexpected"))
	assert.Equal(t, "PREDICTION_FAILED", string(stdErr.Code))
}
