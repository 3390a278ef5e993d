package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

type DiscountHandler struct {
	service *services.DiscountService
}

func NewDiscountHandler(service *services.DiscountService) *DiscountHandler {
	return &DiscountHandler{service: service}
}

type discountRequest struct {
	Code       string `json:"code"`
	Percent    int    `json:"percent"`
	Usage      string `json:"usage"`
	MaxUses    int    `json:"max_uses"`
	ExpireDate string `json:"expire_date"`
	LocationID *int64 `json:"location_id"`
	Active     *bool  `json:"active"`
}

func (h *DiscountHandler) Create(c *fiber.Ctx) error {
	var req discountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	expireDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.ExpireDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expire_date must be YYYY-MM-DD"})
	}

	code, err := h.service.Create(c.Context(), services.CreateDiscountCodeInput{
		Code:       req.Code,
		Percent:    req.Percent,
		Usage:      req.Usage,
		MaxUses:    req.MaxUses,
		ExpireDate: expireDate,
		LocationID: req.LocationID,
	})
	if err != nil {
		return mapServiceError(c, err, "Discount code not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"discount_code": code})
}

func (h *DiscountHandler) List(c *fiber.Ctx) error {
	codes, err := h.service.List(c.Context())
	if err != nil {
		return mapServiceError(c, err, "Discount codes not found")
	}
	return c.JSON(fiber.Map{"discount_codes": codes})
}

func (h *DiscountHandler) Get(c *fiber.Ctx) error {
	codeID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || codeID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid discount code id"})
	}

	code, err := h.service.Get(c.Context(), codeID)
	if err != nil {
		return mapServiceError(c, err, "Discount code not found")
	}
	return c.JSON(fiber.Map{"discount_code": code})
}

func (h *DiscountHandler) Update(c *fiber.Ctx) error {
	codeID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || codeID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid discount code id"})
	}

	var req discountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	expireDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.ExpireDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expire_date must be YYYY-MM-DD"})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	code, err := h.service.Update(c.Context(), codeID, req.Percent, req.MaxUses, expireDate, active)
	if err != nil {
		return mapServiceError(c, err, "Discount code not found")
	}
	return c.JSON(fiber.Map{"discount_code": code})
}

func (h *DiscountHandler) Delete(c *fiber.Ctx) error {
	codeID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || codeID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid discount code id"})
	}

	if err := h.service.Delete(c.Context(), codeID); err != nil {
		return mapServiceError(c, err, "Discount code not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Validate checks a code for a prospective enrollment without redeeming it.
func (h *DiscountHandler) Validate(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code is required"})
	}
	locationID, _ := strconv.ParseInt(c.Query("location_id"), 10, 64)

	discount, err := h.service.CheckCode(c.Context(), code, locationID)
	if err != nil {
		return mapServiceError(c, err, "Discount code not found")
	}
	return c.JSON(fiber.Map{
		"valid":   true,
		"code":    discount.Code,
		"percent": discount.Percent,
	})
}
