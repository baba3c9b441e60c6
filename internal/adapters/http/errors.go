package http

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, ring_not_closed, syntax_error, ...
	Message   string `json:"message"` // Human-readable message
	Position  *int   `json:"position,omitempty"`
	RequestID string `json:"request_id,omitempty"`
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

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFromService maps a service error to a response. Geometry errors are 422 with the error
// kind as code.
func errFromService(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		return errBadRequest(c, err.Error())
	case domain.KindOf(err) != domain.KindUnknown:
		reqID, _ := c.Locals("requestid").(string)
		apiErr := APIError{
			Status:    fiber.StatusUnprocessableEntity,
			Code:      domain.KindOf(err).String(),
			Message:   err.Error(),
			RequestID: reqID,
		}
		var syntaxErr *domain.SyntaxError
		if errors.As(err, &syntaxErr) {
			pos := syntaxErr.Pos
			apiErr.Position = &pos
		}
		return c.Status(apiErr.Status).JSON(apiErr)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(c, fiber.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		logging.FromContext(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
		return errInternal(c, "internal error")
	}
}
