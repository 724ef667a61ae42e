// internal/workers/loan/predict-loan-approval/service.go
package predictloanapproval

import (
	"context"
	"time"

	"loan-approval-workers/internal/applicant"
	"loan-approval-workers/internal/prediction"
)

type Service struct {
	config     *Config
	prediction *prediction.Service
}

func NewService(config *Config, svc *prediction.Service) *Service {
	return &Service{config: config, prediction: svc}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	decision, err := s.prediction.Predict(ctx, &applicant.Parsed{
		ApplicationID: input.ApplicationID,
		Record:        input.Record(),
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		LoanStatus:        string(decision.Result),
		LoanStatusCode:    decision.Label,
		LoanApproved:      decision.Approved,
		PredictionMessage: decision.Message,
		PredictionID:      decision.PredictionID,
		PredictedAt:       decision.PredictedAt.Format(time.RFC3339),
	}, nil
}
