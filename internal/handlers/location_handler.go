package handlers

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

type LocationHandler struct {
	locationRepo *repository.LocationRepository
}

func NewLocationHandler(locationRepo *repository.LocationRepository) *LocationHandler {
	return &LocationHandler{locationRepo: locationRepo}
}

type locationRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Zip     string  `json:"zip"`
	Phone   *string `json:"phone"`
	Active  *bool   `json:"active"`
}

func validateLocationRequest(req locationRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(req.Address) == "" {
		return "address is required"
	}
	if strings.TrimSpace(req.City) == "" {
		return "city is required"
	}
	if strings.TrimSpace(req.State) == "" {
		return "state is required"
	}
	if !zipPattern.MatchString(strings.TrimSpace(req.Zip)) {
		return "zip must be a valid ZIP code"
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) == "" {
		return "phone must not be empty"
	}
	return ""
}

func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var req locationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateLocationRequest(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	location, err := h.locationRepo.Create(c.Context(), repository.CreateLocationInput{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
		State:   strings.TrimSpace(req.State),
		Zip:     strings.TrimSpace(req.Zip),
		Phone:   req.Phone,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create location"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"location": location})
}

func (h *LocationHandler) List(c *fiber.Ctx) error {
	locations, err := h.locationRepo.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list locations"})
	}
	return c.JSON(fiber.Map{"locations": locations})
}

func (h *LocationHandler) Get(c *fiber.Ctx) error {
	locationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || locationID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location id"})
	}

	location, err := h.locationRepo.GetByID(c.Context(), locationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Location not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch location"})
	}
	return c.JSON(fiber.Map{"location": location})
}

func (h *LocationHandler) Update(c *fiber.Ctx) error {
	locationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || locationID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location id"})
	}

	var req locationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateLocationRequest(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	location, err := h.locationRepo.Update(c.Context(), locationID, repository.CreateLocationInput{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
		State:   strings.TrimSpace(req.State),
		Zip:     strings.TrimSpace(req.Zip),
		Phone:   req.Phone,
	}, active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Location not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update location"})
	}
	return c.JSON(fiber.Map{"location": location})
}

func (h *LocationHandler) Delete(c *fiber.Ctx) error {
	locationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || locationID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location id"})
	}

	deleted, err := h.locationRepo.Delete(c.Context(), locationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete location"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Location not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
