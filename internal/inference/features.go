// internal/inference/features.go
package inference

import (
	"math"
	"sort"
)

// Feature names as they appear in the training frame.
const (
	FieldGender            = "Gender"
	FieldMarried           = "Married"
	FieldDependents        = "Dependents"
	FieldEducation         = "Education"
	FieldSelfEmployed      = "Self_Employed"
	FieldApplicantIncome   = "ApplicantIncome"
	FieldCoapplicantIncome = "CoapplicantIncome"
	FieldLoanAmount        = "LoanAmount"
	FieldLoanAmountTerm    = "Loan_Amount_Term"
	FieldCreditHistory     = "Credit_History"
	FieldPropertyArea      = "Property_Area"

	FieldTotalIncome       = "total_income"
	FieldLogTotalIncome    = "log_total_income"
	FieldLogLoanAmount     = "log_loan_amount"
	FieldLoanToIncomeRatio = "loan_to_income_ratio"

	// FieldLoanStatus names the output label encoder.
	FieldLoanStatus = "Loan_Status"
)

// CategoricalFields are the input fields that go through a label encoder.
var CategoricalFields = []string{
	FieldGender,
	FieldMarried,
	FieldDependents,
	FieldEducation,
	FieldSelfEmployed,
	FieldPropertyArea,
}

// FeatureNames is the order in which Assemble lays out the feature vector.
var FeatureNames = []string{
	FieldGender,
	FieldMarried,
	FieldDependents,
	FieldEducation,
	FieldSelfEmployed,
	FieldApplicantIncome,
	FieldCoapplicantIncome,
	FieldLoanAmount,
	FieldLoanAmountTerm,
	FieldCreditHistory,
	FieldPropertyArea,
	FieldTotalIncome,
	FieldLogTotalIncome,
	FieldLogLoanAmount,
	FieldLoanToIncomeRatio,
}

// DerivedFeatures holds the engineered numeric features.
type DerivedFeatures struct {
	TotalIncome       float64
	LogTotalIncome    float64
	LogLoanAmount     float64
	LoanToIncomeRatio float64
}

// Derive computes the engineered features. The +1 offsets keep the log
// arguments and the ratio denominator at or above 1 for non-negative inputs.
func Derive(applicantIncome, coapplicantIncome, loanAmount float64) DerivedFeatures {
	total := applicantIncome + coapplicantIncome
	return DerivedFeatures{
		TotalIncome:       total,
		LogTotalIncome:    math.Log(total + 1),
		LogLoanAmount:     math.Log(loanAmount + 1),
		LoanToIncomeRatio: loanAmount / (total + 1),
	}
}

// FeatureVector is an ordered set of named numeric features.
type FeatureVector struct {
	names  []string
	values []float64
}

// NewFeatureVector pairs names with values. The slices are copied.
func NewFeatureVector(names []string, values []float64) (FeatureVector, error) {
	if len(names) != len(values) {
		return FeatureVector{}, &SchemaMismatchError{Reason: "feature names and values differ in length"}
	}
	fv := FeatureVector{
		names:  append([]string(nil), names...),
		values: append([]float64(nil), values...),
	}
	return fv, nil
}

// Names returns a copy of the feature names in vector order.
func (fv FeatureVector) Names() []string {
	return append([]string(nil), fv.names...)
}

// Values returns a copy of the feature values in vector order.
func (fv FeatureVector) Values() []float64 {
	return append([]float64(nil), fv.values...)
}

// Len returns the number of features.
func (fv FeatureVector) Len() int {
	return len(fv.names)
}

// Get returns the value for a feature name.
func (fv FeatureVector) Get(name string) (float64, bool) {
	for i, n := range fv.names {
		if n == name {
			return fv.values[i], true
		}
	}
	return 0, false
}

// Reorder returns the vector laid out in the given column order. The order
// must name every feature exactly once; nothing is filled with defaults.
func (fv FeatureVector) Reorder(order ColumnOrder) (FeatureVector, error) {
	if err := order.Validate(fv.names); err != nil {
		return FeatureVector{}, err
	}

	index := make(map[string]int, len(fv.names))
	for i, n := range fv.names {
		index[n] = i
	}
	values := make([]float64, len(order))
	for i, name := range order {
		values[i] = fv.values[index[name]]
	}
	return FeatureVector{names: append([]string(nil), order...), values: values}, nil
}

// ColumnOrder is the feature order the scaler and classifier were fitted on.
type ColumnOrder []string

// Validate checks that the column order names exactly the given features.
func (c ColumnOrder) Validate(features []string) error {
	seen := make(map[string]int, len(c))
	for _, name := range c {
		seen[name]++
	}

	var dupes []string
	for name, count := range seen {
		if count > 1 {
			dupes = append(dupes, name)
		}
	}
	if len(dupes) > 0 {
		sort.Strings(dupes)
		return &SchemaMismatchError{Extra: dupes, Reason: "duplicate columns"}
	}

	want := make(map[string]struct{}, len(features))
	var missing []string
	for _, f := range features {
		want[f] = struct{}{}
		if _, ok := seen[f]; !ok {
			missing = append(missing, f)
		}
	}
	var extra []string
	for _, name := range c {
		if _, ok := want[name]; !ok {
			extra = append(extra, name)
		}
	}

	if len(missing) > 0 || len(extra) > 0 {
		return &SchemaMismatchError{Missing: missing, Extra: extra}
	}
	return nil
}
