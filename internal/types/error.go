package types

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ApiError is the single error kind surfaced through the API. StatusCode
// mirrors the HTTP status of the response envelope.
type ApiError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// NewValidationError returns a 400 error for malformed, missing, or
// conflicting input.
func NewValidationError(format string, args ...interface{}) *ApiError {
	return &ApiError{fiber.StatusBadRequest, fmt.Sprintf(format, args...)}
}

// NewAuthenticationError returns a 401 error.
func NewAuthenticationError(message string) *ApiError {
	return &ApiError{fiber.StatusUnauthorized, message}
}

// NewAuthorizationError returns a 403 error.
func NewAuthorizationError(message string) *ApiError {
	return &ApiError{fiber.StatusForbidden, message}
}

// NewNotFoundError returns a 404 error for a missing entity, by id or by
// business key.
func NewNotFoundError(format string, args ...interface{}) *ApiError {
	return &ApiError{fiber.StatusNotFound, fmt.Sprintf(format, args...)}
}

// NewInternalError returns a 500 error for unclassified failures.
func NewInternalError(message string) *ApiError {
	return &ApiError{fiber.StatusInternalServerError, message}
}
