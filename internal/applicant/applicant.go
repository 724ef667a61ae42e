// internal/applicant/applicant.go

// Package applicant turns loosely typed applicant data, from Zeebe job
// variables or an HTTP body, into an inference.ApplicantRecord.
package applicant

import (
	"fmt"
	"math"
	"strings"

	apperrors "loan-approval-workers/internal/common/errors"
	"loan-approval-workers/internal/common/validation"
	"loan-approval-workers/internal/inference"

	"github.com/spf13/cast"
)

// Variable names of the applicant form.
const (
	VarApplicationID     = "applicationId"
	VarGender            = "gender"
	VarMarried           = "married"
	VarDependents        = "dependents"
	VarEducation         = "education"
	VarSelfEmployed      = "selfEmployed"
	VarApplicantIncome   = "applicantIncome"
	VarCoapplicantIncome = "coapplicantIncome"
	VarLoanAmount        = "loanAmount"
	VarLoanTermMonths    = "loanTermMonths"
	VarCreditHistory     = "creditHistory"
	VarPropertyArea      = "propertyArea"
)

// FetchVariables lists the variables a job needs; everything else in the
// process scope is ignored.
var FetchVariables = []string{
	VarApplicationID,
	VarGender,
	VarMarried,
	VarDependents,
	VarEducation,
	VarSelfEmployed,
	VarApplicantIncome,
	VarCoapplicantIncome,
	VarLoanAmount,
	VarLoanTermMonths,
	VarCreditHistory,
	VarPropertyArea,
}

// fieldNames maps form variables to the training field they feed.
var fieldNames = map[string]string{
	VarGender:            inference.FieldGender,
	VarMarried:           inference.FieldMarried,
	VarDependents:        inference.FieldDependents,
	VarEducation:         inference.FieldEducation,
	VarSelfEmployed:      inference.FieldSelfEmployed,
	VarApplicantIncome:   inference.FieldApplicantIncome,
	VarCoapplicantIncome: inference.FieldCoapplicantIncome,
	VarLoanAmount:        inference.FieldLoanAmount,
	VarLoanTermMonths:    inference.FieldLoanAmountTerm,
	VarCreditHistory:     inference.FieldCreditHistory,
	VarPropertyArea:      inference.FieldPropertyArea,
}

// FieldName returns the training field for a form variable, or the variable
// itself when it has none.
func FieldName(variable string) string {
	if f, ok := fieldNames[variable]; ok {
		return f
	}
	return variable
}

// InputSchemaJSON checks presence and JSON types only. Category membership is
// left to the fitted encoders so unknown values surface as UNKNOWN_CATEGORY.
const InputSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": [
		"gender", "married", "dependents", "education", "selfEmployed",
		"applicantIncome", "coapplicantIncome", "loanAmount",
		"loanTermMonths", "creditHistory", "propertyArea"
	],
	"properties": {
		"applicationId": {"type": "string"},
		"gender": {"type": "string"},
		"married": {"type": "string"},
		"dependents": {"type": ["string", "number"]},
		"education": {"type": "string"},
		"selfEmployed": {"type": "string"},
		"applicantIncome": {"type": ["number", "string"]},
		"coapplicantIncome": {"type": ["number", "string"]},
		"loanAmount": {"type": ["number", "string"]},
		"loanTermMonths": {"type": ["number", "string"]},
		"creditHistory": {"type": ["number", "string", "boolean"]},
		"propertyArea": {"type": "string"}
	}
}`

var inputSchema = validation.MustCompileJSON(InputSchemaJSON)

// Parsed is a record ready for the pipeline plus the caller's correlation id.
type Parsed struct {
	ApplicationID string
	Record        inference.ApplicantRecord
}

// Parse validates vars against InputSchemaJSON and coerces them into a
// record. Schema failures are VALIDATION_FAILED standard errors; values that
// cannot be coerced are *inference.InvalidInputError.
func Parse(vars map[string]interface{}) (*Parsed, error) {
	if vars == nil {
		vars = map[string]interface{}{}
	}

	if result := inputSchema.Validate(vars); !result.Valid {
		stdErr := apperrors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
		if first := result.FirstError(); first != nil {
			stdErr.Metadata = map[string]interface{}{"field": FieldName(first.Field)}
		}
		return nil, stdErr
	}

	var (
		rec inference.ApplicantRecord
		err error
	)
	rec.Gender = text(vars[VarGender])
	rec.Married = text(vars[VarMarried])
	rec.Education = text(vars[VarEducation])
	rec.SelfEmployed = text(vars[VarSelfEmployed])
	rec.PropertyArea = text(vars[VarPropertyArea])

	if rec.Dependents, err = dependents(vars[VarDependents]); err != nil {
		return nil, err
	}
	if rec.ApplicantIncome, err = number(VarApplicantIncome, vars[VarApplicantIncome]); err != nil {
		return nil, err
	}
	if rec.CoapplicantIncome, err = number(VarCoapplicantIncome, vars[VarCoapplicantIncome]); err != nil {
		return nil, err
	}
	if rec.LoanAmount, err = number(VarLoanAmount, vars[VarLoanAmount]); err != nil {
		return nil, err
	}
	if rec.LoanTermMonths, err = number(VarLoanTermMonths, vars[VarLoanTermMonths]); err != nil {
		return nil, err
	}
	if rec.CreditHistory, err = number(VarCreditHistory, vars[VarCreditHistory]); err != nil {
		return nil, err
	}

	return &Parsed{
		ApplicationID: text(vars[VarApplicationID]),
		Record:        rec,
	}, nil
}

func text(v interface{}) string {
	return strings.TrimSpace(cast.ToString(v))
}

func number(variable string, v interface{}) (float64, error) {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &inference.InvalidInputError{
			Field:  FieldName(variable),
			Reason: fmt.Sprintf("%v is not a number", v),
		}
	}
	return f, nil
}

// dependents accepts the fitted labels, or a whole number given as a JSON
// number or numeric string, where three and above become "3+".
func dependents(v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if _, err := cast.ToFloat64E(s); s == "" || err != nil {
			return s, nil
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || f < 0 || f != math.Trunc(f) {
		return "", &inference.InvalidInputError{
			Field:  inference.FieldDependents,
			Reason: fmt.Sprintf("%v is not a whole number of dependents", v),
		}
	}
	if f >= 3 {
		return "3+", nil
	}
	return cast.ToString(int(f)), nil
}
