// internal/common/errors/handler.go
package errors

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// JobAction is what the worker tells Zeebe after a failed job.
type JobAction string

const (
	// ActionThrow throws a BPMN error for a boundary event to catch.
	ActionThrow JobAction = "throw"
	// ActionFail fails the job; with zero retries Zeebe raises an incident.
	ActionFail JobAction = "fail"
)

// ErrorHandler handles job errors with standardized error handling
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Normalize returns err as a StandardError, wrapping unknown errors as
// INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Resolve decides how a failed job is reported. Input errors are thrown so
// the process can ask the applicant for a correction; everything else fails
// the job, keeping retries only for transient infrastructure errors.
func Resolve(stdErr *StandardError, jobRetries int32) (JobAction, int) {
	if IsInputError(stdErr.Code) {
		return ActionThrow, 0
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable || jobRetries <= 0 {
		return ActionFail, 0
	}
	if int(jobRetries)-1 < retries {
		retries = int(jobRetries) - 1
	}
	return ActionFail, retries
}

// HandleJobError reports err for job and returns the action taken.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) JobAction {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	action, retries := Resolve(stdErr, job.GetRetries())

	h.logError(job, stdErr, bpmnErr, action, retries)

	var sendErr error
	if action == ActionThrow {
		sendErr = h.throwBPMNError(ctx, client, job, bpmnErr)
	} else {
		sendErr = h.failJob(ctx, client, job, bpmnErr, retries)
	}
	if sendErr != nil {
		h.logger.Error("Failed to report job error to Zeebe", map[string]interface{}{
			"jobKey": job.GetKey(),
			"action": string(action),
			"error":  sendErr.Error(),
		})
	}
	return action
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) error {
	cmd := client.NewFailJobCommand().
		JobKey(job.GetKey()).
		Retries(int32(retries)).
		ErrorMessage("[" + bpmnErr.Code + "] " + bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		_, sendErr := cmd.Send(ctx)
		return sendErr
	}
	_, err = withVars.Send(ctx)
	return err
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.GetKey()).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		_, sendErr := cmd.Send(ctx)
		return sendErr
	}
	_, err = withVars.Send(ctx)
	return err
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError, action JobAction, retries int) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.GetKey(),
		"jobType":          job.GetType(),
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          retries,
		"action":           string(action),
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.GetProcessInstanceKey(),
	})
}
