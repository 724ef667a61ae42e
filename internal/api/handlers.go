// internal/api/handlers.go
package api

import (
	"net/http"

	"loan-approval-workers/internal/applicant"
	apperrors "loan-approval-workers/internal/common/errors"
	"loan-approval-workers/internal/common/logger"
	"loan-approval-workers/internal/inference"
	"loan-approval-workers/internal/prediction"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

type handlers struct {
	prediction    *prediction.Service
	model         ModelDescriber
	artifactCount int
	logger        logger.Logger
}

// ErrorBody is the payload of every non-2xx API response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"status": "ok"})
}

func (h *handlers) ready(w http.ResponseWriter, r *http.Request) {
	if h.prediction == nil || h.model == nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]interface{}{"status": "not ready"})
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":         "ready",
		"artifacts":      h.artifactCount,
		"classifierKind": h.model.Describe().ClassifierKind,
	})
}

func (h *handlers) describeModel(w http.ResponseWriter, r *http.Request) {
	if h.model == nil {
		writeError(w, r, http.StatusServiceUnavailable, ErrorDetail{
			Code:    string(apperrors.ErrCodeArtifactLoadFailed),
			Message: "Model is not loaded",
		})
		return
	}
	render.JSON(w, r, h.model.Describe())
}

func (h *handlers) predict(w http.ResponseWriter, r *http.Request) {
	if h.prediction == nil {
		writeError(w, r, http.StatusServiceUnavailable, ErrorDetail{
			Code:    string(apperrors.ErrCodeArtifactLoadFailed),
			Message: "Model is not loaded",
		})
		return
	}

	var vars map[string]interface{}
	if err := render.DecodeJSON(r.Body, &vars); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrorDetail{
			Code:    string(apperrors.ErrCodeInputParsingFailed),
			Message: "Request body is not a JSON object",
		})
		return
	}

	parsed, err := applicant.Parse(vars)
	if err != nil {
		h.writeStandardError(w, r, inference.ToStandardError(err))
		return
	}

	decision, err := h.prediction.Predict(r.Context(), parsed)
	if err != nil {
		h.writeStandardError(w, r, inference.ToStandardError(err))
		return
	}

	render.JSON(w, r, decision)
}

func (h *handlers) writeStandardError(w http.ResponseWriter, r *http.Request, stdErr *apperrors.StandardError) {
	status := http.StatusInternalServerError
	detail := ErrorDetail{Code: string(stdErr.Code), Message: stdErr.Message}

	if apperrors.IsInputError(stdErr.Code) {
		status = http.StatusUnprocessableEntity
		if stdErr.Details != "" && stdErr.Code != apperrors.ErrCodeUnknownCategory {
			detail.Message = stdErr.Message + ": " + stdErr.Details
		}
		detail.Field = cast.ToString(stdErr.Metadata["field"])
		detail.Value = cast.ToString(stdErr.Metadata["value"])
	} else {
		h.logger.Error("Prediction request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
			"requestId": middleware.GetReqID(r.Context()),
		})
	}

	writeError(w, r, status, detail)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail ErrorDetail) {
	render.Status(r, status)
	render.JSON(w, r, ErrorBody{Error: detail})
}
