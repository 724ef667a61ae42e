// internal/prediction/service.go
package prediction

import (
	"context"
	"time"

	"loan-approval-workers/internal/applicant"
	apperrors "loan-approval-workers/internal/common/errors"
	"loan-approval-workers/internal/common/logger"
	"loan-approval-workers/internal/common/metrics"
	"loan-approval-workers/internal/common/observability"
	"loan-approval-workers/internal/inference"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Predictor is satisfied by *inference.Pipeline.
type Predictor interface {
	Predict(record inference.ApplicantRecord) (inference.PredictionResult, error)
}

// Decision is one loan decision with its correlation data.
type Decision struct {
	PredictionID  string                     `json:"predictionId"`
	ApplicationID string                     `json:"applicationId,omitempty"`
	Result        inference.PredictionResult `json:"loanStatus"`
	Label         string                     `json:"loanStatusCode"`
	Approved      bool                       `json:"approved"`
	Message       string                     `json:"message"`
	PredictedAt   time.Time                  `json:"predictedAt"`
}

// Service runs the pipeline with metrics, tracing and logging around it.
type Service struct {
	predictor Predictor
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
}

type ServiceDependencies struct {
	Predictor     Predictor
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		predictor: deps.Predictor,
		obs:       deps.Observability,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Predict decides one application. Errors are *apperrors.StandardError.
func (s *Service) Predict(ctx context.Context, in *applicant.Parsed) (*Decision, error) {
	ctx, span := s.obs.StartSpan(ctx, "loan.predict",
		attribute.String("loan.application_id", in.ApplicationID),
	)

	start := time.Now()
	result, err := s.predictor.Predict(in.Record)
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		stdErr := inference.ToStandardError(err)
		metrics.PredictionErrors.WithLabelValues(string(stdErr.Code)).Inc()
		s.obs.RecordPrediction(ctx, string(stdErr.Code))
		observability.EndSpan(span, err)

		fields := map[string]interface{}{
			"applicationId": in.ApplicationID,
			"errorCode":     string(stdErr.Code),
			"error":         err.Error(),
		}
		if apperrors.IsInputError(stdErr.Code) {
			s.logger.Warn("Prediction rejected input", fields)
		} else {
			s.logger.Error("Prediction failed", fields)
		}
		return nil, stdErr
	}

	metrics.PredictionsTotal.WithLabelValues(string(result)).Inc()
	s.obs.RecordPrediction(ctx, string(result))
	span.SetAttributes(attribute.String("loan.result", string(result)))
	observability.EndSpan(span, nil)

	d := &Decision{
		PredictionID:  uuid.New().String(),
		ApplicationID: in.ApplicationID,
		Result:        result,
		Label:         result.Label(),
		Approved:      result == inference.Approved,
		Message:       result.Message(),
		PredictedAt:   s.now(),
	}

	s.logger.Info("Loan prediction completed", map[string]interface{}{
		"predictionId":  d.PredictionID,
		"applicationId": d.ApplicationID,
		"loanStatus":    string(d.Result),
		"durationMs":    time.Since(start).Milliseconds(),
	})
	return d, nil
}
