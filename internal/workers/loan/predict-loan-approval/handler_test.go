// internal/workers/loan/predict-loan-approval/handler_test.go
package predictloanapproval

import (
	"context"
	"errors"
	"testing"
	"time"

	"loan-approval-workers/internal/common/camunda"
	"loan-approval-workers/internal/common/camunda/camundatest"
	"loan-approval-workers/internal/common/config"
	"loan-approval-workers/internal/common/logger"
	"loan-approval-workers/internal/inference"
	"loan-approval-workers/internal/inference/inferencetest"
	"loan-approval-workers/internal/prediction"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

type stubPredictor struct {
	result inference.PredictionResult
	err    error
}

func (s stubPredictor) Predict(inference.ApplicantRecord) (inference.PredictionResult, error) {
	return s.result, s.err
}

func createValidConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       5 * time.Second,
		Retry:         &camunda.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}
}

func createTestHandler(t *testing.T, predictor prediction.Predictor) *Handler {
	t.Helper()
	if predictor == nil {
		predictor = inferencetest.Pipeline(t)
	}
	h, err := NewHandler(HandlerOptions{
		CustomConfig: createValidConfig(),
		Prediction: prediction.NewService(prediction.ServiceDependencies{
			Predictor: predictor,
			Logger:    logger.NewTestLogger(t),
		}),
		Logger: logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func createValidVariables() map[string]interface{} {
	return map[string]interface{}{
		"applicationId":     "APP-1001",
		"gender":            "Male",
		"married":           "Yes",
		"dependents":        "0",
		"education":         "Graduate",
		"selfEmployed":      "No",
		"applicantIncome":   5000,
		"coapplicantIncome": 0,
		"loanAmount":        128,
		"loanTermMonths":    360,
		"creditHistory":     1,
		"propertyArea":      "Urban",
	}
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	return camundatest.NewJob(key, TaskType, variables)
}

// ==========================
// Handler Creation Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	svc := prediction.NewService(prediction.ServiceDependencies{Predictor: stubPredictor{}})

	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr bool
	}{
		{
			name: "valid configuration",
			opts: HandlerOptions{CustomConfig: createValidConfig(), Prediction: svc, Logger: logger.NewNoOpLogger()},
		},
		{
			name: "defaults from app config",
			opts: HandlerOptions{AppConfig: &config.Config{}, Prediction: svc},
		},
		{
			name:    "invalid timeout",
			opts:    HandlerOptions{CustomConfig: &Config{Enabled: true, MaxJobsActive: 1}, Prediction: svc},
			wantErr: true,
		},
		{
			name:    "missing prediction service",
			opts:    HandlerOptions{CustomConfig: createValidConfig()},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHandler(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TaskType, h.GetTaskType())
		})
	}
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: false, MaxJobsActive: 20, Timeout: 2500, MaxRetries: 5},
		},
	}

	cfg := createConfigFromAppConfig(appCfg, nil)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 20, cfg.MaxJobsActive)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)

	defaults := createConfigFromAppConfig(nil, nil)
	assert.Equal(t, DefaultConfig().MaxJobsActive, defaults.MaxJobsActive)
	assert.Same(t, camunda.DefaultRetryConfig, defaults.Retry)
}

// ==========================
// Handle Tests
// ==========================

func TestHandler_Handle_CompletesJob(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(vars map[string]interface{})
		status   string
		code     string
		approved bool
	}{
		{
			name:     "approved applicant",
			modify:   func(map[string]interface{}) {},
			status:   "Approved",
			code:     "Y",
			approved: true,
		},
		{
			name:   "no credit history",
			modify: func(v map[string]interface{}) { v["creditHistory"] = 0 },
			status: "Rejected",
			code:   "N",
		},
		{
			name:     "numeric strings and numeric dependents",
			modify:   func(v map[string]interface{}) { v["applicantIncome"] = "5000"; v["dependents"] = 1 },
			status:   "Approved",
			code:     "Y",
			approved: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, nil)
			client := camundatest.NewJobClient()
			vars := createValidVariables()
			tt.modify(vars)

			h.Handle(client, createMockJob(1001, vars))

			require.Len(t, client.Completed(), 1)
			assert.Empty(t, client.Failed())
			assert.Empty(t, client.Thrown())

			req := client.Completed()[0]
			assert.Equal(t, int64(1001), req.JobKey)

			out := camundatest.Variables(req.Variables)
			assert.Equal(t, tt.status, out["loanStatus"])
			assert.Equal(t, tt.code, out["loanStatusCode"])
			assert.Equal(t, tt.approved, out["loanApproved"])
			assert.Equal(t, "Loan is likely to be "+tt.status+".", out["predictionMessage"])
			assert.NotEmpty(t, out["predictionId"])
			_, err := time.Parse(time.RFC3339, out["predictedAt"].(string))
			assert.NoError(t, err)
		})
	}
}

func TestHandler_Handle_ThrowsInputErrors(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(vars map[string]interface{})
		errorCode  string
		errorField string
		errorValue string
	}{
		{
			name:       "unknown gender",
			modify:     func(v map[string]interface{}) { v["gender"] = "Other" },
			errorCode:  "UNKNOWN_CATEGORY",
			errorField: "Gender",
			errorValue: "Other",
		},
		{
			name:       "unknown property area",
			modify:     func(v map[string]interface{}) { v["propertyArea"] = "Suburban" },
			errorCode:  "UNKNOWN_CATEGORY",
			errorField: "Property_Area",
			errorValue: "Suburban",
		},
		{
			name:       "negative loan amount",
			modify:     func(v map[string]interface{}) { v["loanAmount"] = -5 },
			errorCode:  "INVALID_INPUT",
			errorField: "LoanAmount",
		},
		{
			name:       "unsupported loan term",
			modify:     func(v map[string]interface{}) { v["loanTermMonths"] = 100 },
			errorCode:  "INVALID_INPUT",
			errorField: "Loan_Amount_Term",
		},
		{
			name:       "missing married",
			modify:     func(v map[string]interface{}) { delete(v, "married") },
			errorCode:  "INVALID_INPUT",
			errorField: "Married",
		},
		{
			name:       "income not numeric",
			modify:     func(v map[string]interface{}) { v["applicantIncome"] = "a lot" },
			errorCode:  "INVALID_INPUT",
			errorField: "ApplicantIncome",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, nil)
			client := camundatest.NewJobClient()
			vars := createValidVariables()
			tt.modify(vars)

			h.Handle(client, createMockJob(2002, vars))

			assert.Empty(t, client.Completed())
			assert.Empty(t, client.Failed())
			require.Len(t, client.Thrown(), 1)

			req := client.Thrown()[0]
			assert.Equal(t, tt.errorCode, req.ErrorCode)
			errVars := camundatest.Variables(req.Variables)
			assert.Equal(t, tt.errorField, errVars["errorField"])
			if tt.errorValue != "" {
				assert.Equal(t, tt.errorValue, errVars["errorValue"])
			}
		})
	}
}

func TestHandler_Handle_UnparseableVariables(t *testing.T) {
	h := createTestHandler(t, nil)
	client := camundatest.NewJobClient()

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 3003, Type: TaskType, Retries: 3, Variables: "{not json"}}
	h.Handle(client, job)

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "INVALID_INPUT", client.Thrown()[0].ErrorCode)
	assert.Equal(t, "INPUT_PARSING_FAILED", camundatest.Variables(client.Thrown()[0].Variables)["originalErrorCode"])
}

func TestHandler_Handle_ModelErrorsRaiseIncident(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"schema mismatch", &inference.SchemaMismatchError{Reason: "scaler width"}, "MODEL_CONFIGURATION_ERROR"},
		{"unexpected failure", errors.New("nan in forest"), "PREDICTION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, stubPredictor{err: tt.err})
			client := camundatest.NewJobClient()

			h.Handle(client, createMockJob(4004, createValidVariables()))

			assert.Empty(t, client.Completed())
			assert.Empty(t, client.Thrown())
			require.Len(t, client.Failed(), 1)

			req := client.Failed()[0]
			assert.Equal(t, int32(0), req.Retries)
			assert.Contains(t, req.ErrorMessage, "["+tt.code+"]")
		})
	}
}

func TestHandler_Handle_CompleteFailureIsNotReported(t *testing.T) {
	h := createTestHandler(t, nil)
	client := camundatest.NewJobClient()
	client.FailCompletions(errors.New("rpc error: code = NotFound desc = job not found"))

	h.Handle(client, createMockJob(5005, createValidVariables()))

	assert.Empty(t, client.Completed())
	assert.Empty(t, client.Failed())
	assert.Empty(t, client.Thrown())
}

// ==========================
// Execute and Lifecycle Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	h := createTestHandler(t, nil)
	rec := inferencetest.Record()

	out, err := h.Execute(context.Background(), &Input{
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
	})
	require.NoError(t, err)
	assert.Equal(t, "Approved", out.LoanStatus)
	assert.True(t, out.LoanApproved)
}

func TestHandler_RegisterAndHealth(t *testing.T) {
	disabled := createValidConfig()
	disabled.Enabled = false
	h, err := NewHandler(HandlerOptions{
		CustomConfig: disabled,
		Prediction:   prediction.NewService(prediction.ServiceDependencies{Predictor: stubPredictor{}}),
	})
	require.NoError(t, err)

	assert.NoError(t, h.Register())
	assert.False(t, h.IsEnabled())
	assert.Error(t, h.HealthCheck(context.Background()))
	h.Close()

	enabled := createTestHandler(t, nil)
	assert.Error(t, enabled.Register())
}

func TestGetInputSchema(t *testing.T) {
	assert.Contains(t, GetInputSchema(), `"creditHistory"`)
}
