// internal/inference/record.go
package inference

import (
	"fmt"
	"math"
)

// ApplicantRecord is the raw applicant input for one prediction.
type ApplicantRecord struct {
	Gender            string
	Married           string
	Dependents        string
	Education         string
	SelfEmployed      string
	ApplicantIncome   float64
	CoapplicantIncome float64
	LoanAmount        float64 // thousands
	LoanTermMonths    float64
	CreditHistory     float64
	PropertyArea      string
}

// LoanTermOptions lists the loan terms, in months, the model was trained on.
var LoanTermOptions = []float64{360, 180, 240, 300, 120, 84, 60, 36, 12}

// CreditHistoryOptions lists the accepted credit history flags.
var CreditHistoryOptions = []float64{1.0, 0.0}

// Validate checks the numeric preconditions of the record. Categorical
// values are checked later against the fitted encoders.
func (r ApplicantRecord) Validate() error {
	nonNegative := []struct {
		field string
		value float64
	}{
		{FieldApplicantIncome, r.ApplicantIncome},
		{FieldCoapplicantIncome, r.CoapplicantIncome},
		{FieldLoanAmount, r.LoanAmount},
	}
	for _, n := range nonNegative {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return &InvalidInputError{Field: n.field, Reason: "must be a finite number"}
		}
		if n.value < 0 {
			return &InvalidInputError{Field: n.field, Reason: fmt.Sprintf("must be non-negative, got %g", n.value)}
		}
	}

	if !containsFloat(LoanTermOptions, r.LoanTermMonths) {
		return &InvalidInputError{
			Field:  FieldLoanAmountTerm,
			Reason: fmt.Sprintf("must be one of %v, got %g", LoanTermOptions, r.LoanTermMonths),
		}
	}

	if !containsFloat(CreditHistoryOptions, r.CreditHistory) {
		return &InvalidInputError{
			Field:  FieldCreditHistory,
			Reason: fmt.Sprintf("must be 1 or 0, got %g", r.CreditHistory),
		}
	}

	return nil
}

func containsFloat(values []float64, v float64) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
