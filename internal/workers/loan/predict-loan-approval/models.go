// internal/workers/loan/predict-loan-approval/models.go
package predictloanapproval

import "loan-approval-workers/internal/inference"

// Input is the applicant form after coercion.
type Input struct {
	ApplicationID     string  `json:"applicationId,omitempty"`
	Gender            string  `json:"gender"`
	Married           string  `json:"married"`
	Dependents        string  `json:"dependents"`
	Education         string  `json:"education"`
	SelfEmployed      string  `json:"selfEmployed"`
	ApplicantIncome   float64 `json:"applicantIncome"`
	CoapplicantIncome float64 `json:"coapplicantIncome"`
	LoanAmount        float64 `json:"loanAmount"`
	LoanTermMonths    float64 `json:"loanTermMonths"`
	CreditHistory     float64 `json:"creditHistory"`
	PropertyArea      string  `json:"propertyArea"`
}

func (in *Input) Record() inference.ApplicantRecord {
	return inference.ApplicantRecord{
		Gender:            in.Gender,
		Married:           in.Married,
		Dependents:        in.Dependents,
		Education:         in.Education,
		SelfEmployed:      in.SelfEmployed,
		ApplicantIncome:   in.ApplicantIncome,
		CoapplicantIncome: in.CoapplicantIncome,
		LoanAmount:        in.LoanAmount,
		LoanTermMonths:    in.LoanTermMonths,
		CreditHistory:     in.CreditHistory,
		PropertyArea:      in.PropertyArea,
	}
}

// Output variables written back to the process instance.
type Output struct {
	LoanStatus        string `json:"loanStatus"`
	LoanStatusCode    string `json:"loanStatusCode"`
	LoanApproved      bool   `json:"loanApproved"`
	PredictionMessage string `json:"predictionMessage"`
	PredictionID      string `json:"predictionId"`
	PredictedAt       string `json:"predictedAt"`
}

// ErrorCodes lists the BPMN error codes the worker throws or reports on
// incidents. The activity registry must declare all of them.
var ErrorCodes = []string{
	"UNKNOWN_CATEGORY",
	"INVALID_INPUT",
	"MODEL_CONFIGURATION_ERROR",
	"PREDICTION_FAILED",
}
