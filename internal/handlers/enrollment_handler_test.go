package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

type stubEnrollmentService struct {
	enrollResult     *models.EnrollmentDetail
	enrollErr        error
	processResult    *services.ProcessPaymentResult
	processErr       error
	captureResult    *models.EnrollmentDetail
	captureErr       error
	cancelResult     *models.EnrollmentDetail
	cancelErr        error
	listResult       []models.EnrollmentSummary
	listErr          error
	getResult        *models.EnrollmentDetail
	getErr           error
	paymentsResult   []models.PaymentRecord
	paymentsErr      error
	lastParentID     int64
	lastActorID      int64
	lastRole         string
	lastEnrollmentID int64
	lastEnrollInput  services.EnrollInput
	lastProcessInput services.ProcessPaymentInput
	lastOrderID      string
	lastListFilter   repository.EnrollmentListFilter
}

func (s *stubEnrollmentService) Enroll(_ context.Context, parentID int64, input services.EnrollInput) (*models.EnrollmentDetail, error) {
	s.lastParentID = parentID
	s.lastEnrollInput = input
	return s.enrollResult, s.enrollErr
}

func (s *stubEnrollmentService) ProcessPayment(_ context.Context, actorID int64, role string, enrollmentID int64, input services.ProcessPaymentInput) (*services.ProcessPaymentResult, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastEnrollmentID = enrollmentID
	s.lastProcessInput = input
	return s.processResult, s.processErr
}

func (s *stubEnrollmentService) CapturePayment(_ context.Context, actorID int64, role string, enrollmentID int64, orderID string) (*models.EnrollmentDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastEnrollmentID = enrollmentID
	s.lastOrderID = orderID
	return s.captureResult, s.captureErr
}

func (s *stubEnrollmentService) Cancel(_ context.Context, actorID int64, role string, enrollmentID int64) (*models.EnrollmentDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastEnrollmentID = enrollmentID
	return s.cancelResult, s.cancelErr
}

func (s *stubEnrollmentService) List(_ context.Context, actorID int64, role string, filter repository.EnrollmentListFilter) ([]models.EnrollmentSummary, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastListFilter = filter
	return s.listResult, s.listErr
}

func (s *stubEnrollmentService) Get(_ context.Context, actorID int64, role string, enrollmentID int64) (*models.EnrollmentDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastEnrollmentID = enrollmentID
	return s.getResult, s.getErr
}

func (s *stubEnrollmentService) ListPayments(_ context.Context, actorID int64, role string, enrollmentID int64) ([]models.PaymentRecord, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastEnrollmentID = enrollmentID
	return s.paymentsResult, s.paymentsErr
}

func newEnrollmentTestApp(handler *EnrollmentHandler, role string, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/enrollments", handler.Enroll)
	app.Get("/api/v1/enrollments", handler.List)
	app.Get("/api/v1/enrollments/:id", handler.Get)
	app.Post("/api/v1/enrollments/:id/process-payment", handler.ProcessPayment)
	app.Post("/api/v1/enrollments/:id/capture", handler.CapturePayment)
	app.Post("/api/v1/enrollments/:id/cancel", handler.Cancel)
	app.Get("/api/v1/enrollments/:id/payments", handler.ListPayments)
	return app
}

func TestEnrollReturnsCreatedEnrollment(t *testing.T) {
	service := &stubEnrollmentService{
		enrollResult: &models.EnrollmentDetail{
			Enrollment: models.Enrollment{ID: 31, StudentID: 8, ParentID: 4, ScheduleID: 12, Status: models.EnrollmentStatusPendingPayment},
		},
	}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleParent, "4")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments", strings.NewReader(`{
		"student_id": 8,
		"schedule_id": 12,
		"processor": "stripe",
		"discount_code": "spring10",
		"auto_pay_enabled": true
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastParentID != 4 {
		t.Fatalf("expected parent id 4, got %d", service.lastParentID)
	}
	if service.lastEnrollInput.StudentID != 8 || service.lastEnrollInput.ScheduleID != 12 {
		t.Fatalf("unexpected enroll input %+v", service.lastEnrollInput)
	}
	if !service.lastEnrollInput.AutoPayEnabled {
		t.Fatal("expected auto pay to be passed through")
	}
}

func TestEnrollRejectsNonParentRole(t *testing.T) {
	service := &stubEnrollmentService{}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleStudent, "8")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments", strings.NewReader(`{"student_id": 8, "schedule_id": 12, "processor": "stripe"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestEnrollMapsFullScheduleToConflict(t *testing.T) {
	service := &stubEnrollmentService{enrollErr: services.ErrScheduleFull}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleParent, "4")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments", strings.NewReader(`{"student_id": 8, "schedule_id": 12, "processor": "stripe"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestProcessPaymentReturnsEnrollmentForCardCharge(t *testing.T) {
	service := &stubEnrollmentService{
		processResult: &services.ProcessPaymentResult{
			Enrollment: &models.EnrollmentDetail{
				Enrollment: models.Enrollment{ID: 31, Status: models.EnrollmentStatusPaid},
			},
		},
	}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleParent, "4")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/31/process-payment", strings.NewReader(`{"payment_method_id": 3}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastEnrollmentID != 31 {
		t.Fatalf("expected enrollment id 31, got %d", service.lastEnrollmentID)
	}
	if service.lastProcessInput.PaymentMethodID != 3 {
		t.Fatalf("expected payment method 3, got %d", service.lastProcessInput.PaymentMethodID)
	}

	var body struct {
		Enrollment  *models.EnrollmentDetail `json:"enrollment"`
		ApprovalURL string                   `json:"approval_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Enrollment == nil || body.Enrollment.Status != models.EnrollmentStatusPaid {
		t.Fatalf("expected paid enrollment in body, got %+v", body.Enrollment)
	}
	if body.ApprovalURL != "" {
		t.Fatalf("expected no approval url for card charge, got %q", body.ApprovalURL)
	}
}

func TestProcessPaymentReturnsApprovalURLForRedirect(t *testing.T) {
	service := &stubEnrollmentService{
		processResult: &services.ProcessPaymentResult{ApprovalURL: "https://paypal.example/approve/ORDER-1"},
	}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleParent, "4")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/31/process-payment", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["approval_url"] != "https://paypal.example/approve/ORDER-1" {
		t.Fatalf("expected approval url in body, got %v", body)
	}
}

func TestProcessPaymentMapsDeclineToPaymentRequired(t *testing.T) {
	service := &stubEnrollmentService{processErr: services.ErrPaymentFailed}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleParent, "4")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/31/process-payment", strings.NewReader(`{"payment_method_id": 3}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.StatusCode)
	}
}

func TestProcessPaymentMapsBadStateToUnprocessable(t *testing.T) {
	service := &stubEnrollmentService{processErr: services.ErrInvalidStateTransition}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleParent, "4")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/31/process-payment", strings.NewReader(`{"payment_method_id": 3}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCapturePaymentPassesOrderID(t *testing.T) {
	service := &stubEnrollmentService{
		captureResult: &models.EnrollmentDetail{
			Enrollment: models.Enrollment{ID: 31, Status: models.EnrollmentStatusPaid},
		},
	}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleParent, "4")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/31/capture", strings.NewReader(`{"order_id": " ORDER-1 "}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastOrderID != "ORDER-1" {
		t.Fatalf("expected trimmed order id ORDER-1, got %q", service.lastOrderID)
	}
}

func TestListEnrollmentsPassesStatusFilter(t *testing.T) {
	service := &stubEnrollmentService{
		listResult: []models.EnrollmentSummary{{Enrollment: models.Enrollment{ID: 31, Status: models.EnrollmentStatusPaid}}},
	}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleAdmin, "2")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments?status=paid", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastRole != models.RoleAdmin {
		t.Fatalf("expected admin role passed through, got %q", service.lastRole)
	}
	if service.lastListFilter.Status != "paid" {
		t.Fatalf("expected status filter paid, got %q", service.lastListFilter.Status)
	}
}

func TestGetEnrollmentRejectsBadID(t *testing.T) {
	service := &stubEnrollmentService{}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleParent, "4")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments/abc", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCancelMapsForbidden(t *testing.T) {
	service := &stubEnrollmentService{cancelErr: services.ErrForbidden}
	handler := &EnrollmentHandler{service: service}
	app := newEnrollmentTestApp(handler, models.RoleParent, "4")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/31/cancel", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
