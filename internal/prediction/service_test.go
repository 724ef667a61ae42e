// internal/prediction/service_test.go
package prediction

import (
	"context"
	"errors"
	"testing"

	"loan-approval-workers/internal/applicant"
	apperrors "loan-approval-workers/internal/common/errors"
	"loan-approval-workers/internal/common/logger"
	"loan-approval-workers/internal/common/metrics"
	"loan-approval-workers/internal/common/observability"
	"loan-approval-workers/internal/inference"
	"loan-approval-workers/internal/inference/inferencetest"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(record inference.ApplicantRecord) (inference.PredictionResult, error) {
	args := m.Called(record)
	return args.Get(0).(inference.PredictionResult), args.Error(1)
}

func createTestService(t *testing.T, p Predictor) (*Service, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	obs := observability.New("test", observability.WithRegisterer(prometheus.NewRegistry()), observability.WithSpanProcessor(recorder))
	t.Cleanup(obs.Shutdown)

	return NewService(ServiceDependencies{
		Predictor:     p,
		Observability: obs,
		Logger:        logger.NewTestLogger(t),
	}), recorder
}

func TestService_Predict_Approved(t *testing.T) {
	svc, recorder := createTestService(t, inferencetest.Pipeline(t))
	before := testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues("Approved"))

	d, err := svc.Predict(context.Background(), &applicant.Parsed{ApplicationID: "APP-7", Record: inferencetest.Record()})
	require.NoError(t, err)

	assert.Equal(t, inference.Approved, d.Result)
	assert.Equal(t, "Y", d.Label)
	assert.True(t, d.Approved)
	assert.Equal(t, "Loan is likely to be Approved.", d.Message)
	assert.Equal(t, "APP-7", d.ApplicationID)
	_, err = uuid.Parse(d.PredictionID)
	assert.NoError(t, err)
	assert.False(t, d.PredictedAt.IsZero())

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues("Approved")))
	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, "loan.predict", recorder.Ended()[0].Name())
}

func TestService_Predict_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"unknown category", &inference.UnknownCategoryError{Field: "Gender", Value: "Other"}, apperrors.ErrCodeUnknownCategory},
		{"invalid input", &inference.InvalidInputError{Field: "LoanAmount", Reason: "negative"}, apperrors.ErrCodeInvalidInput},
		{"schema mismatch", &inference.SchemaMismatchError{Reason: "width"}, apperrors.ErrCodeSchemaMismatch},
		{"unexpected", errors.New("boom"), apperrors.ErrCodePredictionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictor := new(MockPredictor)
			predictor.On("Predict", mock.Anything).Return(inference.PredictionResult(""), tt.err)
			svc, recorder := createTestService(t, predictor)

			before := testutil.ToFloat64(metrics.PredictionErrors.WithLabelValues(string(tt.code)))
			_, err := svc.Predict(context.Background(), &applicant.Parsed{Record: inferencetest.Record()})

			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, before+1, testutil.ToFloat64(metrics.PredictionErrors.WithLabelValues(string(tt.code))))
			require.Len(t, recorder.Ended(), 1)
			assert.Equal(t, "Error", recorder.Ended()[0].Status().Code.String())
			predictor.AssertExpectations(t)
		})
	}
}
