package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

type offeringApplicationService interface {
	Create(ctx context.Context, input services.CreateOfferingInput) (*models.Offering, error)
	List(ctx context.Context) ([]models.Offering, error)
	GetDetail(ctx context.Context, id int64) (*models.OfferingDetail, error)
	Update(ctx context.Context, id int64, name string, description *string, active bool) (*models.Offering, error)
	Delete(ctx context.Context, id int64) error
	CreatePlan(ctx context.Context, input services.CreatePlanInput) (*models.Plan, error)
	UpdatePlan(ctx context.Context, id int64, name string, description *string, monthlyAmount float64, active bool) (*models.Plan, error)
	DeletePlan(ctx context.Context, id int64) error
}

type OfferingHandler struct {
	service offeringApplicationService
}

func NewOfferingHandler(service *services.OfferingService) *OfferingHandler {
	return &OfferingHandler{service: service}
}

type offeringRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Kind        string  `json:"kind"`
	Active      *bool   `json:"active"`
}

func (h *OfferingHandler) Create(c *fiber.Ctx) error {
	var req offeringRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	offering, err := h.service.Create(c.Context(), services.CreateOfferingInput{
		Name:        req.Name,
		Description: req.Description,
		Kind:        models.OfferingKind(req.Kind),
	})
	if err != nil {
		return mapServiceError(c, err, "Offering not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"offering": offering})
}

func (h *OfferingHandler) List(c *fiber.Ctx) error {
	offerings, err := h.service.List(c.Context())
	if err != nil {
		return mapServiceError(c, err, "Offerings not found")
	}
	return c.JSON(fiber.Map{"offerings": offerings})
}

func (h *OfferingHandler) Get(c *fiber.Ctx) error {
	offeringID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || offeringID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offering id"})
	}

	detail, err := h.service.GetDetail(c.Context(), offeringID)
	if err != nil {
		return mapServiceError(c, err, "Offering not found")
	}
	return c.JSON(fiber.Map{"offering": detail})
}

func (h *OfferingHandler) Update(c *fiber.Ctx) error {
	offeringID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || offeringID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offering id"})
	}

	var req offeringRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	offering, err := h.service.Update(c.Context(), offeringID, req.Name, req.Description, active)
	if err != nil {
		return mapServiceError(c, err, "Offering not found")
	}
	return c.JSON(fiber.Map{"offering": offering})
}

func (h *OfferingHandler) Delete(c *fiber.Ctx) error {
	offeringID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || offeringID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offering id"})
	}

	if err := h.service.Delete(c.Context(), offeringID); err != nil {
		return mapServiceError(c, err, "Offering not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type planRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	MonthlyAmount float64 `json:"monthly_amount"`
	Active        *bool   `json:"active"`
}

func (h *OfferingHandler) CreatePlan(c *fiber.Ctx) error {
	offeringID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || offeringID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offering id"})
	}

	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	plan, err := h.service.CreatePlan(c.Context(), services.CreatePlanInput{
		OfferingID:    offeringID,
		Name:          req.Name,
		Description:   req.Description,
		MonthlyAmount: req.MonthlyAmount,
	})
	if err != nil {
		return mapServiceError(c, err, "Offering not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

func (h *OfferingHandler) UpdatePlan(c *fiber.Ctx) error {
	planID, err := strconv.ParseInt(c.Params("planID"), 10, 64)
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	plan, err := h.service.UpdatePlan(c.Context(), planID, req.Name, req.Description, req.MonthlyAmount, active)
	if err != nil {
		return mapServiceError(c, err, "Plan not found")
	}
	return c.JSON(fiber.Map{"plan": plan})
}

func (h *OfferingHandler) DeletePlan(c *fiber.Ctx) error {
	planID, err := strconv.ParseInt(c.Params("planID"), 10, 64)
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	if err := h.service.DeletePlan(c.Context(), planID); err != nil {
		return mapServiceError(c, err, "Plan not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
