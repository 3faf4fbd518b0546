package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the allocation core. Capacity and contention errors
// are expected under purchase bursts and are not logged as failures.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeCapacity        = "CAPACITY_EXCEEDED"
	CodeSlotTaken       = "SLOT_TAKEN"
	CodeGameNotActive   = "GAME_NOT_ACTIVE"
	CodeAlreadyRevealed = "ALREADY_REVEALED"
	CodeNotOwner        = "NOT_OWNER"
	CodeConfiguration   = "CONFIGURATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL"
)

// AppError is the domain error carried across the service and handler
// layers. Code drives the HTTP status; Err keeps the storage-level
// cause for logs only.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Newf(code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code string) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// HTTPStatus maps a domain code to the response status.
func HTTPStatus(err error) int {
	var ae *AppError
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Code {
	case CodeValidation, CodeConfiguration:
		return http.StatusBadRequest
	case CodeNotOwner:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeSlotTaken, CodeAlreadyRevealed, CodeGameNotActive:
		return http.StatusConflict
	case CodeCapacity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
