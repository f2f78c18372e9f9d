// FILE: internal/pkg/serverutils/error_middleware.go
package serverutils

import (
	"github.com/gofiber/fiber/v2"

	"givehub-be/internal/pkg/apperrors"
	"givehub-be/internal/pkg/logger"
)

// ErrorHandler maps domain errors to HTTP codes. Anything unclassified is a
// 500 with a generic body so gateway keys or SQL never leak to clients.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		switch {
		case apperrors.IsValidation(err):
			code = fiber.StatusBadRequest
			message = err.Error()
		case apperrors.IsNotFound(err):
			code = fiber.StatusNotFound
			message = err.Error()
		case apperrors.IsConflict(err):
			code = fiber.StatusConflict
			message = err.Error()
		case apperrors.IsDuplicateEvent(err):
			// Replayed webhook deliveries are acknowledged, not failed.
			code = fiber.StatusOK
			message = "event already processed"
		case apperrors.IsGatewayTransient(err):
			code = fiber.StatusBadGateway
			message = "payment provider temporarily unavailable"
		case apperrors.IsGateway(err):
			code = fiber.StatusPaymentRequired
			message = err.Error()
		default:
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
				message = fe.Message
			} else {
				log.Error("http", "unhandled error", map[string]interface{}{
					"path":  ctx.Path(),
					"error": err.Error(),
				})
			}
		}

		if code == fiber.StatusOK {
			return ctx.Status(code).JSON(SuccessResponse(message, struct{}{}))
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
