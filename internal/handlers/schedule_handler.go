package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

type scheduleApplicationService interface {
	Create(ctx context.Context, input services.CreateScheduleInput) (*models.Schedule, error)
	List(ctx context.Context, filter repository.ScheduleListFilter) ([]models.Schedule, int, error)
	Get(ctx context.Context, id int64) (*models.Schedule, error)
	Update(ctx context.Context, id int64, input services.UpdateScheduleInput) (*models.Schedule, error)
	UpdateCapacities(ctx context.Context, id int64, newTotal, newDemo int) (*models.Schedule, error)
	Delete(ctx context.Context, id int64) error
}

type ScheduleHandler struct {
	service scheduleApplicationService
}

func NewScheduleHandler(service *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

type scheduleRequest struct {
	Date           string `json:"date"`
	LocationID     int64  `json:"location_id"`
	ClassSessionID int64  `json:"class_session_id"`
	PlanID         *int64 `json:"plan_id"`
	ProgramID      *int64 `json:"program_id"`
	TotalCapacity  int    `json:"total_capacity"`
	DemoCapacity   int    `json:"demo_capacity"`
}

func (h *ScheduleHandler) Create(c *fiber.Ctx) error {
	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	schedule, err := h.service.Create(c.Context(), services.CreateScheduleInput{
		Date:           date,
		LocationID:     req.LocationID,
		ClassSessionID: req.ClassSessionID,
		PlanID:         req.PlanID,
		ProgramID:      req.ProgramID,
		TotalCapacity:  req.TotalCapacity,
		DemoCapacity:   req.DemoCapacity,
	})
	if err != nil {
		return mapServiceError(c, err, "Plan or program not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"schedule": schedule})
}

func (h *ScheduleHandler) List(c *fiber.Ctx) error {
	page, limit := parsePageParams(c)

	filter := repository.ScheduleListFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	filter.LocationID, _ = strconv.ParseInt(c.Query("location_id"), 10, 64)
	filter.ProgramID, _ = strconv.ParseInt(c.Query("program_id"), 10, 64)
	filter.PlanID, _ = strconv.ParseInt(c.Query("plan_id"), 10, 64)

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be YYYY-MM-DD"})
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be YYYY-MM-DD"})
		}
		filter.To = &to
	}

	schedules, total, err := h.service.List(c.Context(), filter)
	if err != nil {
		return mapServiceError(c, err, "Schedules not found")
	}
	return c.JSON(fiber.Map{
		"schedules":  schedules,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	scheduleID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || scheduleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule id"})
	}

	schedule, err := h.service.Get(c.Context(), scheduleID)
	if err != nil {
		return mapServiceError(c, err, "Schedule not found")
	}
	return c.JSON(fiber.Map{"schedule": schedule})
}

func (h *ScheduleHandler) Update(c *fiber.Ctx) error {
	scheduleID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || scheduleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule id"})
	}

	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	schedule, err := h.service.Update(c.Context(), scheduleID, services.UpdateScheduleInput{
		Date:           date,
		LocationID:     req.LocationID,
		ClassSessionID: req.ClassSessionID,
		PlanID:         req.PlanID,
		ProgramID:      req.ProgramID,
	})
	if err != nil {
		return mapServiceError(c, err, "Schedule not found")
	}
	return c.JSON(fiber.Map{"schedule": schedule})
}

func (h *ScheduleHandler) UpdateCapacities(c *fiber.Ctx) error {
	scheduleID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || scheduleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule id"})
	}

	var req capacityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	schedule, err := h.service.UpdateCapacities(c.Context(), scheduleID, req.TotalCapacity, req.DemoCapacity)
	if err != nil {
		return mapServiceError(c, err, "Schedule not found")
	}
	return c.JSON(fiber.Map{"schedule": schedule})
}

func (h *ScheduleHandler) Delete(c *fiber.Ctx) error {
	scheduleID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || scheduleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule id"})
	}

	if err := h.service.Delete(c.Context(), scheduleID); err != nil {
		return mapServiceError(c, err, "Schedule not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
