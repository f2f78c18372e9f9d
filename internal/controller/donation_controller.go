// FILE: internal/controller/donation_controller.go
package controller

import (
	"givehub-be/internal/dto"
	"givehub-be/internal/pkg/serverutils"
	"givehub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDonationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Refund(ctx *fiber.Ctx) error
	ConfirmManual(ctx *fiber.Ctx) error
}

type donationController struct {
	service   service.IDonationService
	reconcile service.IReconcileService
}

func NewDonationController(svc service.IDonationService, reconcile service.IReconcileService) IDonationController {
	return &donationController{service: svc, reconcile: reconcile}
}

func (c *donationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/donations")
	h.Post("/", c.Create)
	h.Get("/:id", c.Get)
	h.Post("/:id/cancel", c.Cancel)

	// Operator routes
	h.Post("/:id/refund", serverutils.JwtMiddleware, c.Refund)
	h.Post("/:id/confirm", serverutils.JwtMiddleware, c.ConfirmManual)
}

func (c *donationController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDonationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateDonation(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Donation created", res))
}

func (c *donationController) Get(ctx *fiber.Ctx) error {
	res, err := c.service.GetDonation(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Donation", res))
}

func (c *donationController) Cancel(ctx *fiber.Ctx) error {
	var req dto.CancelDonationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.CancelDonation(ctx.Context(), ctx.Params("id"), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Donation cancelled", nil))
}

func (c *donationController) Refund(ctx *fiber.Ctx) error {
	var req dto.RefundDonationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RefundDonation(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund applied", res))
}

func (c *donationController) ConfirmManual(ctx *fiber.Ctx) error {
	var req dto.ConfirmManualDonationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.reconcile.ConfirmManual(ctx.Context(), ctx.Params("id"), &req); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Confirmation queued", nil))
}
