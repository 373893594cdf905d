package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/usecases"
)

// APIError is a structured error response. View carries the session state
// when a session operation failed after it was applied, e.g. a ranking
// failure that set the session's error message.
type APIError struct {
	Status    int                   `json:"status"`
	Code      string                `json:"code"`    // bad_request, not_found, conflict, bad_gateway, ...
	Message   string                `json:"message"` // Human-readable message
	RequestID string                `json:"request_id,omitempty"`
	View      *usecases.SessionView `json:"view,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(apiError(c, status, code, message))
}

func apiError(c *fiber.Ctx, status int, code, message string) APIError {
	reqID, _ := c.Locals("requestid").(string)
	return APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	}
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

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg)
}

// errDomain maps core errors to HTTP responses. view, when non-nil, is
// attached to the body.
func errDomain(c *fiber.Ctx, err error, view *usecases.SessionView) error {
	var (
		status int
		code   string
		msg    = err.Error()
	)
	var rerr *domain.RankingError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status, code = fiber.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidRequest):
		status, code = fiber.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrRequestPending):
		status, code = fiber.StatusConflict, "request_pending"
	case errors.Is(err, domain.ErrSessionLimit):
		status, code = fiber.StatusTooManyRequests, "session_limit"
	case errors.As(err, &rerr):
		status, code, msg = fiber.StatusBadGateway, "bad_gateway", rerr.Message
	case errors.Is(err, context.DeadlineExceeded):
		status, code, msg = fiber.StatusGatewayTimeout, "timeout", "ranking backend did not answer in time"
	default:
		status, code = fiber.StatusBadGateway, "bad_gateway"
	}

	body := apiError(c, status, code, msg)
	body.View = view
	return c.Status(status).JSON(body)
}
