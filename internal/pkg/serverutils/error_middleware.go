package serverutils

import (
	"errors"

	"docrag-be/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts domain errors bubbling out of handlers
// into their HTTP representation. Streaming handlers that have already
// written a body never reach this path.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		code := statusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

func statusFor(err error) int {
	switch {
	case apperr.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateSession),
		errors.Is(err, apperr.ErrAlreadyProcessing),
		errors.Is(err, apperr.ErrSessionNotReady):
		return fiber.StatusConflict
	case errors.Is(err, apperr.ErrRetrievalFailed),
		errors.Is(err, apperr.ErrGenerationFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
