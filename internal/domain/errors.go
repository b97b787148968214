package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Checkout orchestration errors (CHECKOUT_*)
	ErrorCodeCheckoutInitFailed        ErrorCode = "CHECKOUT_INIT_FAILED"
	ErrorCodeCheckoutInvalidState      ErrorCode = "CHECKOUT_INVALID_STATE"
	ErrorCodeCheckoutAlreadyProcessing ErrorCode = "CHECKOUT_ALREADY_PROCESSING"
	ErrorCodeCheckoutMethodUnknown     ErrorCode = "CHECKOUT_METHOD_UNKNOWN"
	ErrorCodeCheckoutSessionNotFound   ErrorCode = "CHECKOUT_SESSION_NOT_FOUND"

	// Authorization gate errors (AUTH_*)
	ErrorCodeSecretFormat  ErrorCode = "AUTH_SECRET_FORMAT"
	ErrorCodeAuthMismatch  ErrorCode = "AUTH_SECRET_MISMATCH"
	ErrorCodeAuthLockedOut ErrorCode = "AUTH_LOCKED_OUT"
	ErrorCodeAuthBusy      ErrorCode = "AUTH_VERIFICATION_IN_FLIGHT"

	// EMI engine errors (EMI_*)
	ErrorCodeEMIInvalidInput    ErrorCode = "EMI_INVALID_INPUT"
	ErrorCodeEMINoEligiblePlans ErrorCode = "EMI_NO_ELIGIBLE_PLANS"
	ErrorCodeEMIInvalidPlan     ErrorCode = "EMI_INVALID_PLAN"
	ErrorCodeEMIComparison      ErrorCode = "EMI_COMPARISON_INVARIANT"

	// Validation errors (VALIDATION_*)
	ErrorCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmount       ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"

	// Payment processor errors (PROCESSOR_*)
	ErrorCodeProcessorError ErrorCode = "PROCESSOR_ERROR"

	// Internal errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationAmount ||
		code == ErrorCodeValidationMissingField ||
		code == ErrorCodeEMIInvalidInput
}

// IsStateError checks if an error came from an operation attempted in the
// wrong checkout or gate state
func IsStateError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeCheckoutInvalidState ||
		code == ErrorCodeCheckoutAlreadyProcessing ||
		code == ErrorCodeAuthBusy ||
		code == ErrorCodeAuthLockedOut
}
