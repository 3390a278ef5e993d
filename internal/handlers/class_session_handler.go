package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

type ClassSessionHandler struct {
	service *services.ClassSessionService
}

func NewClassSessionHandler(service *services.ClassSessionService) *ClassSessionHandler {
	return &ClassSessionHandler{service: service}
}

type classSessionRequest struct {
	LocationID    int64  `json:"location_id" validate:"required,gt=0"`
	Weekday       string `json:"weekday" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime     string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime       string `json:"end_time" validate:"required,datetime=15:04"`
	Type          string `json:"type" validate:"required,oneof=weekday weekend"`
	TotalCapacity int    `json:"total_capacity" validate:"gte=0"`
	DemoCapacity  int    `json:"demo_capacity" validate:"gte=0"`
	Active        *bool  `json:"active"`
}

func (h *ClassSessionHandler) Create(c *fiber.Ctx) error {
	var req classSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session, err := h.service.Create(c.Context(), services.CreateClassSessionInput{
		LocationID:    req.LocationID,
		Weekday:       req.Weekday,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Type:          req.Type,
		TotalCapacity: req.TotalCapacity,
		DemoCapacity:  req.DemoCapacity,
	})
	if err != nil {
		return mapServiceError(c, err, "Location not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"class_session": session})
}

func (h *ClassSessionHandler) List(c *fiber.Ctx) error {
	locationID, _ := strconv.ParseInt(c.Query("location_id"), 10, 64)

	sessions, err := h.service.List(c.Context(), locationID)
	if err != nil {
		return mapServiceError(c, err, "Class sessions not found")
	}
	return c.JSON(fiber.Map{"class_sessions": sessions})
}

func (h *ClassSessionHandler) Get(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class session id"})
	}

	session, err := h.service.Get(c.Context(), sessionID)
	if err != nil {
		return mapServiceError(c, err, "Class session not found")
	}
	return c.JSON(fiber.Map{"class_session": session})
}

func (h *ClassSessionHandler) Update(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class session id"})
	}

	var req classSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	session, err := h.service.UpdateSlot(c.Context(), sessionID, req.Weekday, req.StartTime, req.EndTime, req.Type, active)
	if err != nil {
		return mapServiceError(c, err, "Class session not found")
	}
	return c.JSON(fiber.Map{"class_session": session})
}

type capacityRequest struct {
	TotalCapacity int `json:"total_capacity"`
	DemoCapacity  int `json:"demo_capacity"`
}

func (h *ClassSessionHandler) UpdateCapacities(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class session id"})
	}

	var req capacityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session, err := h.service.UpdateCapacities(c.Context(), sessionID, req.TotalCapacity, req.DemoCapacity)
	if err != nil {
		return mapServiceError(c, err, "Class session not found")
	}
	return c.JSON(fiber.Map{"class_session": session})
}

func (h *ClassSessionHandler) Delete(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class session id"})
	}

	if err := h.service.Delete(c.Context(), sessionID); err != nil {
		return mapServiceError(c, err, "Class session not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
