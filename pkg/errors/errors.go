package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal

	// Domain error codes
	ErrInvalidTransition
	ErrNotExpandable
	ErrMaxRadiusReached
	ErrDeliveryFailure
	ErrPersistenceFailure
)

// HTTPStatus maps an error code to an HTTP status.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrInvalidTransition:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotExpandable, ErrMaxRadiusReached:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

// InvalidTransition is returned when a requested status is not reachable
// from the appointment's current status.
func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("invalid status transition from %s to %s", from, to),
	}
}

// NotExpandable is returned when an appointment is no longer awaiting an
// interpreter and its offer radius cannot grow.
func NotExpandable(status string) *AppError {
	return &AppError{
		Code:    ErrNotExpandable,
		Message: fmt.Sprintf("offer is not expandable while appointment is %s", status),
	}
}

// MaxRadiusReached is returned when the offer radius is already at its cap.
func MaxRadiusReached(radius float64) *AppError {
	return &AppError{
		Code:    ErrMaxRadiusReached,
		Message: fmt.Sprintf("offer radius already at maximum (%.0f miles)", radius),
	}
}

func DeliveryFailure(err error) *AppError {
	return &AppError{
		Code:    ErrDeliveryFailure,
		Message: "notification delivery failed",
		Err:     err,
	}
}

func Persistence(err error) *AppError {
	return &AppError{
		Code:    ErrPersistenceFailure,
		Message: "persistence operation failed",
		Err:     err,
	}
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
