// FILE: internal/controller/receipt_controller.go
package controller

import (
	"givehub-be/internal/dto"
	"givehub-be/internal/pkg/serverutils"
	"givehub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReceiptController interface {
	RegisterRoutes(r fiber.Router)
	IssueForDonation(ctx *fiber.Ctx) error
	IssueAnnual(ctx *fiber.Ctx) error
}

type receiptController struct {
	service service.IReceiptService
}

func NewReceiptController(svc service.IReceiptService) IReceiptController {
	return &receiptController{service: svc}
}

func (c *receiptController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/receipts")
	h.Post("/donation/:txnId", serverutils.JwtMiddleware, c.IssueForDonation)
	h.Post("/annual", serverutils.JwtMiddleware, c.IssueAnnual)
}

func (c *receiptController) IssueForDonation(ctx *fiber.Ctx) error {
	res, err := c.service.IssueDonationReceipt(ctx.Context(), ctx.Params("txnId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Receipt", res))
}

func (c *receiptController) IssueAnnual(ctx *fiber.Ctx) error {
	var req dto.AnnualReceiptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.IssueAnnualReceipt(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Annual receipt", res))
}
