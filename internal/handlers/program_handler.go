package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

type ProgramHandler struct {
	service *services.ProgramService
}

func NewProgramHandler(service *services.ProgramService) *ProgramHandler {
	return &ProgramHandler{service: service}
}

type programRequest struct {
	OfferingID        int64   `json:"offering_id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Price             float64 `json:"price"`
	EstimatedDuration int     `json:"estimated_duration"`
	VideoURL          *string `json:"video_url"`
	ImageURL          *string `json:"image_url"`
	Active            *bool   `json:"active"`
}

func (h *ProgramHandler) Create(c *fiber.Ctx) error {
	var req programRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	program, err := h.service.Create(c.Context(), services.CreateProgramInput{
		OfferingID:        req.OfferingID,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		EstimatedDuration: req.EstimatedDuration,
		VideoURL:          req.VideoURL,
		ImageURL:          req.ImageURL,
	})
	if err != nil {
		return mapServiceError(c, err, "Offering not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"program": program})
}

func (h *ProgramHandler) List(c *fiber.Ctx) error {
	programs, err := h.service.List(c.Context())
	if err != nil {
		return mapServiceError(c, err, "Programs not found")
	}
	return c.JSON(fiber.Map{"programs": programs})
}

func (h *ProgramHandler) Get(c *fiber.Ctx) error {
	programID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || programID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	detail, err := h.service.GetDetail(c.Context(), programID)
	if err != nil {
		return mapServiceError(c, err, "Program not found")
	}
	return c.JSON(fiber.Map{"program": detail})
}

func (h *ProgramHandler) ListTopics(c *fiber.Ctx) error {
	programID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || programID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	topics, err := h.service.ListTopics(c.Context(), programID)
	if err != nil {
		return mapServiceError(c, err, "Program not found")
	}
	return c.JSON(fiber.Map{"topics": topics})
}

func (h *ProgramHandler) Update(c *fiber.Ctx) error {
	programID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || programID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req programRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	program, err := h.service.Update(c.Context(), programID, repository.UpdateProgramInput{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		EstimatedDuration: req.EstimatedDuration,
		VideoURL:          req.VideoURL,
		ImageURL:          req.ImageURL,
		Active:            active,
	})
	if err != nil {
		return mapServiceError(c, err, "Program not found")
	}
	return c.JSON(fiber.Map{"program": program})
}

func (h *ProgramHandler) Delete(c *fiber.Ctx) error {
	programID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || programID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	if err := h.service.Delete(c.Context(), programID); err != nil {
		return mapServiceError(c, err, "Program not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type moduleRequest struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	EstimatedDuration int     `json:"estimated_duration"`
	SortOrder         int     `json:"sort_order"`
}

func (h *ProgramHandler) CreateModule(c *fiber.Ctx) error {
	programID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || programID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req moduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	module, err := h.service.CreateModule(c.Context(), services.CreateModuleInput{
		ProgramID:         programID,
		Name:              req.Name,
		Description:       req.Description,
		EstimatedDuration: req.EstimatedDuration,
		SortOrder:         req.SortOrder,
	})
	if err != nil {
		return mapServiceError(c, err, "Program not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"module": module})
}

func (h *ProgramHandler) UpdateModule(c *fiber.Ctx) error {
	moduleID, err := strconv.ParseInt(c.Params("moduleID"), 10, 64)
	if err != nil || moduleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid module id"})
	}

	var req moduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	module, err := h.service.UpdateModule(c.Context(), moduleID, req.Name, req.Description, req.EstimatedDuration, req.SortOrder)
	if err != nil {
		return mapServiceError(c, err, "Module not found")
	}
	return c.JSON(fiber.Map{"module": module})
}

func (h *ProgramHandler) DeleteModule(c *fiber.Ctx) error {
	moduleID, err := strconv.ParseInt(c.Params("moduleID"), 10, 64)
	if err != nil || moduleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid module id"})
	}

	if err := h.service.DeleteModule(c.Context(), moduleID); err != nil {
		return mapServiceError(c, err, "Module not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type topicRequest struct {
	ModuleID          int64   `json:"module_id"`
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	EstimatedDuration int     `json:"estimated_duration"`
	SortOrder         int     `json:"sort_order"`
}

func (h *ProgramHandler) CreateTopic(c *fiber.Ctx) error {
	var req topicRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ModuleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid module id"})
	}

	topic, err := h.service.CreateTopic(c.Context(), services.CreateTopicInput{
		ModuleID:          req.ModuleID,
		Name:              req.Name,
		Description:       req.Description,
		EstimatedDuration: req.EstimatedDuration,
		SortOrder:         req.SortOrder,
	})
	if err != nil {
		return mapServiceError(c, err, "Module not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"topic": topic})
}

func (h *ProgramHandler) UpdateTopic(c *fiber.Ctx) error {
	topicID, err := strconv.ParseInt(c.Params("topicID"), 10, 64)
	if err != nil || topicID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid topic id"})
	}

	var req topicRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	topic, err := h.service.UpdateTopic(c.Context(), topicID, req.Name, req.Description, req.EstimatedDuration, req.SortOrder)
	if err != nil {
		return mapServiceError(c, err, "Topic not found")
	}
	return c.JSON(fiber.Map{"topic": topic})
}

func (h *ProgramHandler) DeleteTopic(c *fiber.Ctx) error {
	topicID, err := strconv.ParseInt(c.Params("topicID"), 10, 64)
	if err != nil || topicID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid topic id"})
	}

	if err := h.service.DeleteTopic(c.Context(), topicID); err != nil {
		return mapServiceError(c, err, "Topic not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
