// internal/inference/errmap.go
package inference

import (
	"errors"

	apperrors "loan-approval-workers/internal/common/errors"
)

// ToStandardError maps a pipeline error onto the shared error codes used by
// the worker and the HTTP API.
func ToStandardError(err error) *apperrors.StandardError {
	var (
		ucErr *UnknownCategoryError
		iiErr *InvalidInputError
		smErr *SchemaMismatchError
	)
	switch {
	case errors.As(err, &ucErr):
		return apperrors.NewUnknownCategoryError(ucErr.Field, ucErr.Value)
	case errors.As(err, &iiErr):
		return apperrors.NewInvalidInputError(iiErr.Field, iiErr.Reason)
	case errors.As(err, &smErr):
		return apperrors.NewSchemaMismatchError(smErr)
	default:
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			return stdErr
		}
		return apperrors.NewPredictionFailedError(err)
	}
}
