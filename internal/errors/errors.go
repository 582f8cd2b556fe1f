package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")

	// Integration engine taxonomy. Record level errors (encoding, decoding,
	// validation blocked) are collected into run summaries, batch level errors
	// (sequence allocation, transport) abort the current run.
	ErrValidationBlocked  = new(ErrCodeValidationBlocked, "disbursement blocked by eligibility validation")
	ErrEncoding           = new(ErrCodeEncoding, "record encoding error")
	ErrDecoding           = new(ErrCodeDecoding, "record decoding error")
	ErrSequenceAllocation = new(ErrCodeSequenceAllocation, "sequence allocation failure")
	ErrTransport          = new(ErrCodeTransport, "file transport failure")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrHTTPClient:         http.StatusInternalServerError,
		ErrDatabase:           http.StatusInternalServerError,
		ErrNotFound:           http.StatusNotFound,
		ErrAlreadyExists:      http.StatusConflict,
		ErrValidation:         http.StatusBadRequest,
		ErrInvalidOperation:   http.StatusBadRequest,
		ErrSystem:             http.StatusInternalServerError,
		ErrValidationBlocked:  http.StatusUnprocessableEntity,
		ErrEncoding:           http.StatusUnprocessableEntity,
		ErrDecoding:           http.StatusUnprocessableEntity,
		ErrSequenceAllocation: http.StatusServiceUnavailable,
		ErrTransport:          http.StatusBadGateway,
	}
)

const (
	ErrCodeHTTPClient       = "http_client_error"
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodeDatabase         = "database_error"

	ErrCodeValidationBlocked  = "validation_blocked"
	ErrCodeEncoding           = "encoding_error"
	ErrCodeDecoding           = "decoding_error"
	ErrCodeSequenceAllocation = "sequence_allocation_failure"
	ErrCodeTransport          = "transport_failure"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

func IsValidationBlocked(err error) bool {
	return errors.Is(err, ErrValidationBlocked)
}

func IsEncoding(err error) bool {
	return errors.Is(err, ErrEncoding)
}

func IsDecoding(err error) bool {
	return errors.Is(err, ErrDecoding)
}

func IsSequenceAllocation(err error) bool {
	return errors.Is(err, ErrSequenceAllocation)
}

func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsBatchFatal reports whether err must abort the whole batch run
// instead of being recorded against a single record.
func IsBatchFatal(err error) bool {
	return IsSequenceAllocation(err) || IsTransport(err) || errors.Is(err, ErrDatabase)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
