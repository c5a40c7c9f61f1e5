package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CodeValidation     = "VALIDATION_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeConflict       = "CONFLICT"
	CodeReferenceInUse = "REFERENCE_IN_USE"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
)

// postgres SQLSTATE values we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidRegex        = "2201B"
	pgInvalidTextRepr     = "22P02"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewReferenceInUse reports a delete blocked by dependent records.
func NewReferenceInUse(message string, details map[string]any) error {
	return NewDomainError(CodeReferenceInUse, message, http.StatusBadRequest, details)
}

func NewRateLimited(message string) error {
	return NewDomainError(CodeRateLimited, message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return NewDomainError(CodeConflict, "a record with the same unique value already exists", http.StatusBadRequest,
				map[string]any{"constraint": pgErr.ConstraintName})
		case pgForeignKeyViolation:
			return NewReferenceInUse("record is referenced by other records", map[string]any{"constraint": pgErr.ConstraintName}).(*DomainError)
		case pgCheckViolation:
			return NewValidationError("value violates constraint", map[string]any{"constraint": pgErr.ConstraintName}).(*DomainError)
		case pgInvalidRegex:
			return NewValidationError("invalid search pattern", nil).(*DomainError)
		case pgInvalidTextRepr:
			return NewValidationError("invalid value", nil).(*DomainError)
		}
	}
	return NewInternalError(err).(*DomainError)
}

// MapError converts err into a *DomainError, preserving nil.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// IsNotFound reports whether err maps to a NOT_FOUND domain error.
func IsNotFound(err error) bool {
	de := ToDomainError(err)
	return de != nil && de.Code == CodeNotFound
}
