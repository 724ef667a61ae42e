// internal/inference/inferencetest/fixture.go

// Package inferencetest builds small fitted artifacts for tests in other packages.
package inferencetest

import (
	"testing"

	"loan-approval-workers/internal/inference"

	"github.com/stretchr/testify/require"
)

// Classes are the label encoder classes of the fixture model.
var Classes = map[string][]string{
	inference.FieldGender:       {"Female", "Male"},
	inference.FieldMarried:      {"No", "Yes"},
	inference.FieldDependents:   {"0", "1", "2", "3+"},
	inference.FieldEducation:    {"Graduate", "Not Graduate"},
	inference.FieldSelfEmployed: {"No", "Yes"},
	inference.FieldPropertyArea: {"Rural", "Semiurban", "Urban"},
	inference.FieldLoanStatus:   {"N", "Y"},
}

// Artifacts returns an identity-scaled two-stump random forest. It approves
// exactly when Credit_History is 1.
func Artifacts(t testing.TB) inference.Artifacts {
	t.Helper()

	encoders := make(map[string]*inference.CategoricalEncoder, len(Classes))
	for field, classes := range Classes {
		enc, err := inference.NewCategoricalEncoder(field, classes)
		require.NoError(t, err)
		encoders[field] = enc
	}

	n := len(inference.FeatureNames)
	mean := make([]float64, n)
	scale := make([]float64, n)
	for i := range scale {
		scale[i] = 1
	}
	scaler, err := inference.NewStandardScaler(mean, scale, inference.FeatureNames)
	require.NoError(t, err)

	credit, logLoan := indexOf(inference.FieldCreditHistory), indexOf(inference.FieldLogLoanAmount)
	trees := []inference.DecisionTree{
		{
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Feature:       []int{credit, -2, -2},
			Threshold:     []float64{0.5, -2, -2},
			Value:         [][]float64{{11, 9}, {9, 1}, {2, 8}},
		},
		{
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Feature:       []int{logLoan, -2, -2},
			Threshold:     []float64{6.0, -2, -2},
			Value:         [][]float64{{9, 11}, {3, 7}, {6, 4}},
		},
	}
	forest, err := inference.NewRandomForest([]int{0, 1}, n, trees)
	require.NoError(t, err)

	return inference.Artifacts{
		Encoders:   encoders,
		Scaler:     scaler,
		Classifier: forest,
		Columns:    append(inference.ColumnOrder(nil), inference.FeatureNames...),
	}
}

// Pipeline builds a pipeline over Artifacts.
func Pipeline(t testing.TB) *inference.Pipeline {
	t.Helper()
	p, err := inference.NewPipeline(Artifacts(t))
	require.NoError(t, err)
	return p
}

// Record returns an applicant the fixture model approves.
func Record() inference.ApplicantRecord {
	return inference.ApplicantRecord{
		Gender:            "Male",
		Married:           "Yes",
		Dependents:        "0",
		Education:         "Graduate",
		SelfEmployed:      "No",
		ApplicantIncome:   5000,
		CoapplicantIncome: 0,
		LoanAmount:        128,
		LoanTermMonths:    360,
		CreditHistory:     1,
		PropertyArea:      "Urban",
	}
}

func indexOf(name string) int {
	for i, n := range inference.FeatureNames {
		if n == name {
			return i
		}
	}
	panic("unknown feature " + name)
}
