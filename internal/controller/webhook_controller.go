// FILE: internal/controller/webhook_controller.go
package controller

import (
	"givehub-be/internal/pkg/logger"
	"givehub-be/internal/pkg/serverutils"
	"givehub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Receive(ctx *fiber.Ctx) error
}

type webhookController struct {
	reconcile service.IReconcileService
	logger    logger.ILogger
}

func NewWebhookController(reconcile service.IReconcileService, log logger.ILogger) IWebhookController {
	return &webhookController{reconcile: reconcile, logger: log}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	r.Post("/webhooks/:provider", c.Receive)
}

// Receive verifies the callback and queues it for the reconcile worker.
// Unverifiable payloads get 400 with no side effects; verified ones are
// acked fast so provider retry timers stay quiet.
func (c *webhookController) Receive(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	raw := ctx.Body()
	signature := ctx.Get("X-Signature")

	// Body() is only valid during the handler; the queue outlives it.
	body := make([]byte, len(raw))
	copy(body, raw)

	if err := c.reconcile.IngestWebhook(ctx.Context(), provider, body, signature); err != nil {
		c.logger.Warn("webhook", "rejected callback", map[string]interface{}{
			"provider": provider,
			"error":    err.Error(),
		})
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid webhook payload"))
	}

	return ctx.SendStatus(fiber.StatusOK)
}
