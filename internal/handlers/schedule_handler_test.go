package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

type stubScheduleService struct {
	createResult    *models.Schedule
	createErr       error
	listResult      []models.Schedule
	listTotal       int
	listErr         error
	getResult       *models.Schedule
	getErr          error
	editResult      *models.Schedule
	editErr         error
	updateResult    *models.Schedule
	updateErr       error
	deleteErr       error
	lastCreateInput services.CreateScheduleInput
	lastEditInput   services.UpdateScheduleInput
	lastFilter      repository.ScheduleListFilter
	lastScheduleID  int64
	lastTotal       int
	lastDemo        int
}

func (s *stubScheduleService) Create(_ context.Context, input services.CreateScheduleInput) (*models.Schedule, error) {
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubScheduleService) List(_ context.Context, filter repository.ScheduleListFilter) ([]models.Schedule, int, error) {
	s.lastFilter = filter
	return s.listResult, s.listTotal, s.listErr
}

func (s *stubScheduleService) Get(_ context.Context, id int64) (*models.Schedule, error) {
	s.lastScheduleID = id
	return s.getResult, s.getErr
}

func (s *stubScheduleService) Update(_ context.Context, id int64, input services.UpdateScheduleInput) (*models.Schedule, error) {
	s.lastScheduleID = id
	s.lastEditInput = input
	return s.editResult, s.editErr
}

func (s *stubScheduleService) UpdateCapacities(_ context.Context, id int64, newTotal, newDemo int) (*models.Schedule, error) {
	s.lastScheduleID = id
	s.lastTotal = newTotal
	s.lastDemo = newDemo
	return s.updateResult, s.updateErr
}

func (s *stubScheduleService) Delete(_ context.Context, id int64) error {
	s.lastScheduleID = id
	return s.deleteErr
}

func newScheduleTestApp(handler *ScheduleHandler) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/schedules", handler.Create)
	app.Get("/api/v1/schedules", handler.List)
	app.Get("/api/v1/schedules/:id", handler.Get)
	app.Put("/api/v1/schedules/:id", handler.Update)
	app.Put("/api/v1/schedules/:id/capacity", handler.UpdateCapacities)
	app.Delete("/api/v1/schedules/:id", handler.Delete)
	return app
}

func TestCreateScheduleParsesDate(t *testing.T) {
	planID := int64(3)
	service := &stubScheduleService{
		createResult: &models.Schedule{ID: 12, LocationID: 1, ClassSessionID: 2, PlanID: &planID, TotalCapacity: 20, AvailableCapacity: 20},
	}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(`{
		"date": "2026-04-18",
		"location_id": 1,
		"class_session_id": 2,
		"plan_id": 3,
		"total_capacity": 20,
		"demo_capacity": 4
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
	want := time.Date(2026, time.April, 18, 0, 0, 0, 0, time.UTC)
	if !service.lastCreateInput.Date.Equal(want) {
		t.Fatalf("expected date %v, got %v", want, service.lastCreateInput.Date)
	}
	if service.lastCreateInput.PlanID == nil || *service.lastCreateInput.PlanID != 3 {
		t.Fatalf("expected plan id 3, got %v", service.lastCreateInput.PlanID)
	}
}

func TestCreateScheduleRejectsBadDate(t *testing.T) {
	service := &stubScheduleService{}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(`{"date": "18/04/2026", "location_id": 1, "class_session_id": 2}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateScheduleMapsKindMismatch(t *testing.T) {
	service := &stubScheduleService{createErr: services.ErrKindMismatch}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(`{"date": "2026-04-18", "location_id": 1, "class_session_id": 2, "plan_id": 3}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListSchedulesBuildsFilterAndPagination(t *testing.T) {
	service := &stubScheduleService{
		listResult: []models.Schedule{{ID: 12}},
		listTotal:  45,
	}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules?location_id=1&from=2026-04-01&to=2026-04-30&page=2&limit=10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastFilter.LocationID != 1 {
		t.Fatalf("expected location filter 1, got %d", service.lastFilter.LocationID)
	}
	if service.lastFilter.From == nil || service.lastFilter.To == nil {
		t.Fatal("expected from and to filters to be set")
	}
	if service.lastFilter.Limit != 10 || service.lastFilter.Offset != 10 {
		t.Fatalf("expected limit 10 offset 10, got limit %d offset %d", service.lastFilter.Limit, service.lastFilter.Offset)
	}

	var body struct {
		Pagination struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Pagination.Total != 45 || body.Pagination.TotalPages != 5 {
		t.Fatalf("unexpected pagination %+v", body.Pagination)
	}
}

func TestUpdateScheduleCapacitiesPassesCounts(t *testing.T) {
	service := &stubScheduleService{
		updateResult: &models.Schedule{ID: 12, TotalCapacity: 25, AvailableCapacity: 19},
	}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/schedules/12/capacity", strings.NewReader(`{"total_capacity": 25, "demo_capacity": 5}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastScheduleID != 12 || service.lastTotal != 25 || service.lastDemo != 5 {
		t.Fatalf("unexpected capacity update: id=%d total=%d demo=%d", service.lastScheduleID, service.lastTotal, service.lastDemo)
	}
}

func TestDeleteScheduleWithEnrollmentsConflicts(t *testing.T) {
	service := &stubScheduleService{deleteErr: services.ErrScheduleHasEnrollments}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/schedules/12", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestUpdateSchedulePassesInput(t *testing.T) {
	programID := int64(6)
	service := &stubScheduleService{
		editResult: &models.Schedule{ID: 12, LocationID: 2, ClassSessionID: 4, ProgramID: &programID},
	}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/schedules/12", strings.NewReader(`{
		"date": "2026-05-02",
		"location_id": 2,
		"class_session_id": 4,
		"program_id": 6
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastScheduleID != 12 {
		t.Errorf("expected schedule id 12, got %d", service.lastScheduleID)
	}
	want := time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC)
	if !service.lastEditInput.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, service.lastEditInput.Date)
	}
	if service.lastEditInput.LocationID != 2 || service.lastEditInput.ClassSessionID != 4 {
		t.Errorf("unexpected slot fields: %+v", service.lastEditInput)
	}
	if service.lastEditInput.ProgramID == nil || *service.lastEditInput.ProgramID != 6 {
		t.Errorf("expected program id 6, got %v", service.lastEditInput.ProgramID)
	}
}

func TestUpdateScheduleRejectsBadDate(t *testing.T) {
	service := &stubScheduleService{}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/schedules/12", strings.NewReader(`{"date": "05/02/2026", "location_id": 2, "class_session_id": 4, "program_id": 6}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateScheduleWithEnrollmentsConflicts(t *testing.T) {
	service := &stubScheduleService{editErr: services.ErrScheduleHasEnrollments}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/schedules/12", strings.NewReader(`{"date": "2026-05-02", "location_id": 2, "class_session_id": 4, "plan_id": 3}`))
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
