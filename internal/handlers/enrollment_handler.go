package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

type enrollmentApplicationService interface {
	Enroll(ctx context.Context, parentID int64, input services.EnrollInput) (*models.EnrollmentDetail, error)
	ProcessPayment(ctx context.Context, actorID int64, role string, enrollmentID int64, input services.ProcessPaymentInput) (*services.ProcessPaymentResult, error)
	CapturePayment(ctx context.Context, actorID int64, role string, enrollmentID int64, orderID string) (*models.EnrollmentDetail, error)
	Cancel(ctx context.Context, actorID int64, role string, enrollmentID int64) (*models.EnrollmentDetail, error)
	List(ctx context.Context, actorID int64, role string, filter repository.EnrollmentListFilter) ([]models.EnrollmentSummary, error)
	Get(ctx context.Context, actorID int64, role string, enrollmentID int64) (*models.EnrollmentDetail, error)
	ListPayments(ctx context.Context, actorID int64, role string, enrollmentID int64) ([]models.PaymentRecord, error)
}

type EnrollmentHandler struct {
	service enrollmentApplicationService
}

func NewEnrollmentHandler(service *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

type enrollRequest struct {
	StudentID      int64  `json:"student_id"`
	ScheduleID     int64  `json:"schedule_id"`
	Processor      string `json:"processor"`
	DiscountCode   string `json:"discount_code"`
	AutoPayEnabled bool   `json:"auto_pay_enabled"`
}

func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleParent {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	parentID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req enrollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	detail, err := h.service.Enroll(c.Context(), parentID, services.EnrollInput{
		StudentID:      req.StudentID,
		ScheduleID:     req.ScheduleID,
		Processor:      strings.TrimSpace(req.Processor),
		DiscountCode:   strings.TrimSpace(req.DiscountCode),
		AutoPayEnabled: req.AutoPayEnabled,
	})
	if err != nil {
		return mapServiceError(c, err, "Schedule not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"enrollment": detail})
}

func (h *EnrollmentHandler) List(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	filter := repository.EnrollmentListFilter{
		Status: strings.TrimSpace(c.Query("status")),
	}
	enrollments, err := h.service.List(c.Context(), actorID, role, filter)
	if err != nil {
		return mapServiceError(c, err, "Enrollments not found")
	}
	return c.JSON(fiber.Map{"enrollments": enrollments})
}

func (h *EnrollmentHandler) Get(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	enrollmentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || enrollmentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	detail, err := h.service.Get(c.Context(), actorID, role, enrollmentID)
	if err != nil {
		return mapServiceError(c, err, "Enrollment not found")
	}
	return c.JSON(fiber.Map{"enrollment": detail})
}

type processPaymentRequest struct {
	PaymentMethodID int64 `json:"payment_method_id"`
}

// ProcessPayment drives the card charge or hands back a PayPal approval URL.
// Retrying after a failure posts to the same enrollment id.
func (h *EnrollmentHandler) ProcessPayment(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	enrollmentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || enrollmentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	var req processPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.service.ProcessPayment(c.Context(), actorID, role, enrollmentID, services.ProcessPaymentInput{
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		return mapServiceError(c, err, "Enrollment not found")
	}

	if result.ApprovalURL != "" {
		return c.JSON(fiber.Map{"approval_url": result.ApprovalURL})
	}
	return c.JSON(fiber.Map{"enrollment": result.Enrollment})
}

type capturePaymentRequest struct {
	OrderID string `json:"order_id"`
}

func (h *EnrollmentHandler) CapturePayment(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	enrollmentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || enrollmentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	var req capturePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	detail, err := h.service.CapturePayment(c.Context(), actorID, role, enrollmentID, strings.TrimSpace(req.OrderID))
	if err != nil {
		return mapServiceError(c, err, "Enrollment not found")
	}
	return c.JSON(fiber.Map{"enrollment": detail})
}

func (h *EnrollmentHandler) Cancel(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	enrollmentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || enrollmentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	detail, err := h.service.Cancel(c.Context(), actorID, role, enrollmentID)
	if err != nil {
		return mapServiceError(c, err, "Enrollment not found")
	}
	return c.JSON(fiber.Map{"enrollment": detail})
}

func (h *EnrollmentHandler) ListPayments(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	enrollmentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || enrollmentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	payments, err := h.service.ListPayments(c.Context(), actorID, role, enrollmentID)
	if err != nil {
		return mapServiceError(c, err, "Enrollment not found")
	}
	return c.JSON(fiber.Map{"payments": payments})
}
