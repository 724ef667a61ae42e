// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Applicant input errors, correctable by the caller.
	ErrCodeUnknownCategory    ErrorCode = "UNKNOWN_CATEGORY"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"

	// Model configuration errors.
	ErrCodeSchemaMismatch     ErrorCode = "SCHEMA_MISMATCH"
	ErrCodeArtifactLoadFailed ErrorCode = "ARTIFACT_LOAD_FAILED"
	ErrCodePredictionFailed   ErrorCode = "PREDICTION_FAILED"

	// Infrastructure errors.
	ErrCodeExternalService    ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout            ErrorCode = "TIMEOUT_ERROR"
	ErrCodeAlertPublishFailed ErrorCode = "ALERT_PUBLISH_FAILED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewUnknownCategoryError reports a categorical value outside the fitted domain.
func NewUnknownCategoryError(field, value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownCategory,
		Message:   fmt.Sprintf("Unknown value %q for %s", value, field),
		Details:   fmt.Sprintf("field: %s, value: %s", field, value),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field, "value": value},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError reports a numeric precondition violation.
func NewInvalidInputError(field, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   fmt.Sprintf("Invalid value for %s", field),
		Details:   reason,
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError reports a request that does not match the input schema.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputParsingFailedError reports variables that could not be decoded.
func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse input",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaMismatchError reports artifacts that disagree with the feature set.
func NewSchemaMismatchError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaMismatch,
		Message:   "Model artifacts do not match the feature schema",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactLoadFailedError reports an artifact that could not be loaded or decoded.
func NewArtifactLoadFailedError(name string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactLoadFailed,
		Message:   fmt.Sprintf("Failed to load model artifact %s", name),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"artifact": name},
		Timestamp: time.Now().UTC(),
	}
}

// NewPredictionFailedError wraps an unexpected inference failure.
func NewPredictionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePredictionFailed,
		Message:   "Prediction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertPublishFailedError reports an alert that could not be delivered.
func NewAlertPublishFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertPublishFailed,
		Message:   fmt.Sprintf("Failed to publish alert via %s", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the BPMN error codes caught by
// boundary events in the loan process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeUnknownCategory:    "UNKNOWN_CATEGORY",
	ErrCodeInvalidInput:       "INVALID_INPUT",
	ErrCodeValidationFailed:   "INVALID_INPUT",
	ErrCodeInputParsingFailed: "INVALID_INPUT",
	ErrCodeSchemaMismatch:     "MODEL_CONFIGURATION_ERROR",
	ErrCodeArtifactLoadFailed: "MODEL_CONFIGURATION_ERROR",
	ErrCodePredictionFailed:   "PREDICTION_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeExternalService,
		ErrCodeAlertPublishFailed:
		return 3

	case ErrCodeTimeout:
		return 2

	default:
		// Inference is deterministic; retrying an input or schema error
		// gives the same answer.
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if field, ok := stdErr.Metadata["field"]; ok {
		vars["errorField"] = field
	}
	if value, ok := stdErr.Metadata["value"]; ok {
		vars["errorValue"] = value
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsInputError reports whether the code describes a correctable caller mistake.
func IsInputError(code ErrorCode) bool {
	return GetErrorCategory(code) == "INPUT"
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeUnknownCategory, ErrCodeInvalidInput, ErrCodeValidationFailed, ErrCodeInputParsingFailed:
		return "INPUT"
	case ErrCodeSchemaMismatch, ErrCodeArtifactLoadFailed, ErrCodePredictionFailed:
		return "MODEL"
	}

	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TIMEOUT"):
		return "TIMEOUT"
	case strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "ALERT"):
		return "INFRASTRUCTURE"
	default:
		return "OTHER"
	}
}
