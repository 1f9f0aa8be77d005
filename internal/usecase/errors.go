package usecase

import (
	"errors"
	"net/http"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidJSON       = "INVALID_JSON"
	CodeInvalidID         = "INVALID_ID"
	CodeLeadNotFound      = "LEAD_NOT_FOUND"
	CodeQuizLeadNotFound  = "QUIZ_LEAD_NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeDatabase          = "DATABASE_ERROR"
)

// DomainError is an expected outcome the caller can act on.
type DomainError struct {
	Code    string
	Message string
	Fields  []string
	// Missing lists required fields that were absent, a subset of Fields.
	Missing []string
}

func (e *DomainError) Error() string {
	return e.Message
}

// HTTPStatus maps the domain code to a response status.
func (e *DomainError) HTTPStatus() int {
	switch e.Code {
	case CodeLeadNotFound, CodeQuizLeadNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an infrastructure failure; its detail is logged, never shown.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func notFound(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg}
}

func storageError(op string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: op + " failed", Err: err}
}
