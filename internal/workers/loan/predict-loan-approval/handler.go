// internal/workers/loan/predict-loan-approval/handler.go
package predictloanapproval

import (
	"context"
	"fmt"
	"time"

	"loan-approval-workers/internal/applicant"
	"loan-approval-workers/internal/common/camunda"
	"loan-approval-workers/internal/common/config"
	"loan-approval-workers/internal/common/errors"
	"loan-approval-workers/internal/common/logger"
	"loan-approval-workers/internal/common/metrics"
	"loan-approval-workers/internal/common/observability"
	"loan-approval-workers/internal/inference"
	"loan-approval-workers/internal/prediction"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "predict-loan-approval"

type Handler struct {
	config       *Config
	logger       logger.Logger
	camunda      *camunda.Client
	service      *Service
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	jobWorker    worker.JobWorker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Camunda       *camunda.Client
	CustomConfig  *Config
	Prediction    *prediction.Service
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Prediction == nil {
		return nil, fmt.Errorf("%s requires a prediction service", TaskType)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		camunda:      opts.Camunda,
		service:      NewService(workerConfig, opts.Prediction),
		obs:          opts.Observability,
		errorHandler: errors.NewErrorHandler(loggerInstance),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.obs.StartSpan(ctx, TaskType,
		attribute.Int64("zeebe.job_key", job.GetKey()),
		attribute.Int64("zeebe.process_instance_key", job.GetProcessInstanceKey()),
	)

	h.logger.Info("Processing loan approval prediction", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	output, err := h.process(ctx, job)
	if err != nil {
		stdErr := inference.ToStandardError(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.obs.RecordJobProcessed(ctx, "failed")
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		observability.EndSpan(span, err)
		return
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		stdErr := errors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.obs.RecordJobProcessed(ctx, "failed")
		observability.EndSpan(span, err)
		return
	}

	duration := time.Since(startTime)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, duration, "completed")
	observability.EndSpan(span, nil)
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	input, err := parseInput(job)
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, input)
}

// Execute runs a prediction for an already parsed input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	err := camunda.Retry(ctx, h.config.Retry, "complete-job", func(ctx context.Context) error {
		request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
		if err != nil {
			return err
		}
		_, err = request.Send(ctx)
		return err
	})
	if err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return err
	}

	h.logger.Info("Loan approval prediction completed", map[string]interface{}{
		"jobKey":       job.GetKey(),
		"loanStatus":   output.LoanStatus,
		"predictionId": output.PredictionID,
	})
	return nil
}

func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", nil)
		return nil
	}
	if h.camunda == nil {
		return fmt.Errorf("%s: camunda client is not configured", TaskType)
	}

	h.jobWorker = camunda.OpenWorker(h.camunda.GetClient(), camunda.WorkerOptions{
		TaskType:       TaskType,
		MaxJobsActive:  h.config.MaxJobsActive,
		Timeout:        h.config.Timeout,
		FetchVariables: applicant.FetchVariables,
	}, h.Handle)

	h.logger.Info("Loan approval worker registered with Camunda", map[string]interface{}{
		"maxJobsActive": h.config.MaxJobsActive,
		"timeout":       h.config.Timeout.String(),
	})
	return nil
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.logger.Info("Shutting down worker gracefully", nil)
		h.jobWorker.Close()
		h.jobWorker.AwaitClose()
		h.jobWorker = nil
	}
}

func (h *Handler) HealthCheck(ctx context.Context) error {
	if h.camunda == nil {
		return fmt.Errorf("camunda client is not configured")
	}
	if err := h.camunda.HealthCheck(ctx); err != nil {
		return fmt.Errorf("camunda health check failed: %w", err)
	}
	return nil
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		if customConfig.Retry == nil {
			customConfig.Retry = camunda.DefaultRetryConfig
		}
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		if workerCfg, exists := appConfig.Workers[TaskType]; exists {
			cfg.Enabled = workerCfg.Enabled
			if workerCfg.MaxJobsActive > 0 {
				cfg.MaxJobsActive = workerCfg.MaxJobsActive
			}
			if workerCfg.Timeout > 0 {
				cfg.Timeout = time.Duration(workerCfg.Timeout) * time.Millisecond
			}
			if workerCfg.MaxRetries > 0 {
				cfg.Retry = &camunda.RetryConfig{
					MaxRetries: workerCfg.MaxRetries,
					BaseDelay:  camunda.DefaultRetryConfig.BaseDelay,
					MaxDelay:   camunda.DefaultRetryConfig.MaxDelay,
				}
			}
		}
	}

	return cfg
}
