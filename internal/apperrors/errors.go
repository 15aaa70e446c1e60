// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"net/http"
)

// Code is a stable machine-readable identifier for a business-rule failure.
// These are decisions, not transient faults, and are never retried.
type Code string

const (
	CodeNotEligible          Code = "NOT_ELIGIBLE"
	CodeDuplicateRequest     Code = "DUPLICATE_REQUEST"
	CodeAlreadyAdopted       Code = "ALREADY_ADOPTED"
	CodeAlreadyApproved      Code = "ALREADY_APPROVED"
	CodeInvalidTransition    Code = "INVALID_TRANSITION"
	CodeReasonRequired       Code = "REASON_REQUIRED"
	CodeNotFound             Code = "NOT_FOUND"
	CodeCannotCancelApproved Code = "CANNOT_CANCEL_APPROVED"
	CodeNoValidFields        Code = "NO_VALID_FIELDS"
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// As unwraps err into an *Error when it carries one.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err is a business error with the given code.
func Is(err error, code Code) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == code
	}
	return false
}

// HTTPStatus maps a business code to the response status. Missing resources
// are 404, everything else is a 400-class validation failure.
func (e *Error) HTTPStatus() int {
	if e.Code == CodeNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
