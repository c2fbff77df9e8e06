package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/merobase/internal/domain/sample"
	"github.com/rpggio/merobase/internal/repository"
)

// ErrInvalidParams indicates tool arguments that could not be decoded.
var ErrInvalidParams = errors.New("invalid params")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var verr *sample.ValidationError
	var idErr *sample.IdentifierError
	switch {
	case errors.As(err, &verr):
		return &APIError{Code: "VALIDATION_FAILED", Message: "sample violates the schema", Details: verr.Violations, RecoveryHint: "Fix the listed fields and retry"}
	case errors.As(err, &idErr):
		return &APIError{Code: "ID_INPUTS_MISSING", Message: "sample id cannot be derived", Details: idErr.Missing, RecoveryHint: "Provide projectType, projectNumber and sampleNumber"}
	case errors.Is(err, sample.ErrNotFound):
		return &APIError{Code: "SAMPLE_NOT_FOUND", Message: err.Error(), RecoveryHint: "Check the ID with search_samples; IDs change when photos or numbers change"}
	case errors.Is(err, sample.ErrDuplicateID):
		return &APIError{Code: "DUPLICATE_ID", Message: err.Error(), RecoveryHint: "Use a different sampleNumber"}
	case errors.Is(err, sample.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "sample document modified by another writer", RecoveryHint: "Call reload_samples and retry"}
	case errors.Is(err, ErrInvalidParams), errors.Is(err, repository.ErrInvalidInput):
		return &APIError{Code: "INVALID_PARAMS", Message: err.Error()}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
