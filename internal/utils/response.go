package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/types"
)

// Success sends the uniform success envelope.
func Success(c *fiber.Ctx, status int, data interface{}, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"statusCode": status,
		"data":       data,
		"message":    message,
		"success":    true,
	})
}

// Error sends the uniform error envelope. The HTTP status mirrors statusCode.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"statusCode": status,
		"message":    message,
		"success":    false,
	})
}

// ErrorHandler maps application errors onto the uniform error envelope. It
// is installed as the fiber app's global error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var apiErr *types.ApiError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.StatusCode
		message = apiErr.Message
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return Error(c, code, message)
}

// SuccessResponseStruct defines the schema for success envelopes
type SuccessResponseStruct struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorResponseStruct defines the schema for error envelopes
type ErrorResponseStruct struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}
