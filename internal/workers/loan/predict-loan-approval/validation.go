// internal/workers/loan/predict-loan-approval/validation.go
package predictloanapproval

import (
	"loan-approval-workers/internal/applicant"
	"loan-approval-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
)

// GetInputSchema returns the JSON schema of the job variables.
func GetInputSchema() string {
	return applicant.InputSchemaJSON
}

func parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}

	parsed, err := applicant.Parse(variables)
	if err != nil {
		return nil, err
	}

	rec := parsed.Record
	return &Input{
		ApplicationID:     parsed.ApplicationID,
		Gender:            rec.Gender,
		Married:           rec.Married,
		Dependents:        rec.Dependents,
		Education:         rec.Education,
		SelfEmployed:      rec.SelfEmployed,
		ApplicantIncome:   rec.ApplicantIncome,
		CoapplicantIncome: rec.CoapplicantIncome,
		LoanAmount:        rec.LoanAmount,
		LoanTermMonths:    rec.LoanTermMonths,
		CreditHistory:     rec.CreditHistory,
		PropertyArea:      rec.PropertyArea,
	}, nil
}
