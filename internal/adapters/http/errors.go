package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var errDisconnected = errors.New("disconnected")

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, forbidden, internal_error
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// MutationResult is the body of the update_location and delete endpoints.
type MutationResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errForbidden returns a 403 error.
func errForbidden(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusForbidden, "forbidden", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// reject answers a mutation with {"success": false, "error": msg}.
func reject(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(MutationResult{Success: false, Error: msg})
}
