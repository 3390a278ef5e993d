package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

type paymentMethodApplicationService interface {
	RegisterCard(ctx context.Context, userID int64, input services.RegisterCardInput) (*models.PaymentMethod, error)
	List(ctx context.Context, userID int64) ([]models.PaymentMethod, error)
	SetDefault(ctx context.Context, userID, methodID int64) (*models.PaymentMethod, error)
	Delete(ctx context.Context, userID, methodID int64) error
}

type PaymentMethodHandler struct {
	service paymentMethodApplicationService
}

func NewPaymentMethodHandler(service *services.PaymentMethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{service: service}
}

type registerCardRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
	MakeDefault     bool   `json:"make_default"`
}

func (h *PaymentMethodHandler) RegisterCard(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req registerCardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	method, err := h.service.RegisterCard(c.Context(), userID, services.RegisterCardInput{
		PaymentMethodToken: req.PaymentMethodID,
		MakeDefault:        req.MakeDefault,
	})
	if err != nil {
		return mapServiceError(c, err, "User not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payment_method": method})
}

func (h *PaymentMethodHandler) List(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	methods, err := h.service.List(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err, "Payment methods not found")
	}
	return c.JSON(fiber.Map{"payment_methods": methods})
}

func (h *PaymentMethodHandler) SetDefault(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	methodID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || methodID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment method id"})
	}

	method, err := h.service.SetDefault(c.Context(), userID, methodID)
	if err != nil {
		return mapServiceError(c, err, "Payment method not found")
	}
	return c.JSON(fiber.Map{"payment_method": method})
}

func (h *PaymentMethodHandler) Delete(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	methodID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || methodID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment method id"})
	}

	if err := h.service.Delete(c.Context(), userID, methodID); err != nil {
		return mapServiceError(c, err, "Payment method not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
