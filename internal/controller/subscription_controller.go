// FILE: internal/controller/subscription_controller.go
package controller

import (
	"givehub-be/internal/dto"
	"givehub-be/internal/pkg/serverutils"
	"givehub-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	GetLog(ctx *fiber.Ctx) error
	Pause(ctx *fiber.Ctx) error
	Resume(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	service service.ISubscriptionService
}

func NewSubscriptionController(svc service.ISubscriptionService) ISubscriptionController {
	return &subscriptionController{service: svc}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/subscriptions")
	h.Post("/", c.Create)
	h.Get("/:id", c.Get)
	h.Get("/:id/log", c.GetLog)

	// Owner routes
	h.Post("/:id/pause", serverutils.JwtMiddleware, c.Pause)
	h.Post("/:id/resume", serverutils.JwtMiddleware, c.Resume)
	h.Post("/:id/cancel", serverutils.JwtMiddleware, c.Cancel)
	h.Put("/:id", serverutils.JwtMiddleware, c.Update)
}

func (c *subscriptionController) parseId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid subscription id")
	}
	return id, nil
}

func (c *subscriptionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateSubscription(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Subscription created", res))
}

func (c *subscriptionController) Get(ctx *fiber.Ctx) error {
	id, err := c.parseId(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetSubscription(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription", res))
}

func (c *subscriptionController) GetLog(ctx *fiber.Ctx) error {
	id, err := c.parseId(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetActivityLog(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription activity", res))
}

func (c *subscriptionController) Pause(ctx *fiber.Ctx) error {
	id, err := c.parseId(ctx)
	if err != nil {
		return err
	}
	if err := c.service.PauseSubscription(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Subscription paused", nil))
}

func (c *subscriptionController) Resume(ctx *fiber.Ctx) error {
	id, err := c.parseId(ctx)
	if err != nil {
		return err
	}
	if err := c.service.ResumeSubscription(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Subscription resumed", nil))
}

func (c *subscriptionController) Cancel(ctx *fiber.Ctx) error {
	id, err := c.parseId(ctx)
	if err != nil {
		return err
	}

	var req dto.CancelDonationRequest
	_ = ctx.BodyParser(&req) // Reason is optional on subscription cancel.

	if err := c.service.CancelSubscription(ctx.Context(), id, req.Reason); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Subscription cancelled", nil))
}

func (c *subscriptionController) Update(ctx *fiber.Ctx) error {
	id, err := c.parseId(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateSubscription(ctx.Context(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription updated", res))
}
