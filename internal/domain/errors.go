package domain

import (
	"errors"
	"fmt"
)

// Error codes for the failure kinds the decision engine can surface.
const (
	ErrCodeModelUnavailable = "MODEL_UNAVAILABLE"
	ErrCodeNormalization    = "NORMALIZATION_ERROR"
	ErrCodeInference        = "INFERENCE_ERROR"
	ErrCodeInvalidInput     = "INVALID_INPUT"
)

// DecisionError is a typed failure surfaced by the decision core. Callers
// distinguish failure kinds by Code rather than by matching message text.
type DecisionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *DecisionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *DecisionError) Unwrap() error {
	return e.Err
}

// NewModelUnavailableError reports that no model artifact could be loaded.
func NewModelUnavailableError(details string, err error) *DecisionError {
	return &DecisionError{
		Code:    ErrCodeModelUnavailable,
		Message: "model artifact is not available",
		Details: details,
		Err:     err,
	}
}

// NewNormalizationError reports that the loaded schema could not be
// satisfied during feature normalization.
func NewNormalizationError(details string, err error) *DecisionError {
	return &DecisionError{
		Code:    ErrCodeNormalization,
		Message: "failed to normalize donor profile",
		Details: details,
		Err:     err,
	}
}

// NewInferenceError reports a classifier invocation failure.
func NewInferenceError(details string, err error) *DecisionError {
	return &DecisionError{
		Code:    ErrCodeInference,
		Message: "classifier inference failed",
		Details: details,
		Err:     err,
	}
}

// IsModelUnavailable reports whether err is a MODEL_UNAVAILABLE failure.
func IsModelUnavailable(err error) bool {
	return hasCode(err, ErrCodeModelUnavailable)
}

// IsInferenceError reports whether err is an INFERENCE_ERROR failure.
func IsInferenceError(err error) bool {
	return hasCode(err, ErrCodeInference)
}

// IsNormalizationError reports whether err is a NORMALIZATION_ERROR failure.
func IsNormalizationError(err error) bool {
	return hasCode(err, ErrCodeNormalization)
}

func hasCode(err error, code string) bool {
	var de *DecisionError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
