package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
)

type stubOfferingStore struct {
	offerings map[int64]*models.Offering
	plans     map[int64][]models.Plan
	created   *repository.CreateOfferingInput
	planIn    *repository.CreatePlanInput
}

func (s *stubOfferingStore) Create(_ context.Context, input repository.CreateOfferingInput) (*models.Offering, error) {
	s.created = &input
	return &models.Offering{ID: 1, Name: input.Name, Kind: input.Kind, Active: true}, nil
}

func (s *stubOfferingStore) GetByID(_ context.Context, id int64) (*models.Offering, error) {
	if o, ok := s.offerings[id]; ok {
		return o, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubOfferingStore) List(_ context.Context) ([]models.Offering, error) { return nil, nil }

func (s *stubOfferingStore) Update(_ context.Context, id int64, name string, description *string, active bool) (*models.Offering, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubOfferingStore) Delete(_ context.Context, id int64) (bool, error) { return false, nil }

func (s *stubOfferingStore) CreatePlan(_ context.Context, input repository.CreatePlanInput) (*models.Plan, error) {
	s.planIn = &input
	return &models.Plan{ID: 10, OfferingID: input.OfferingID, Name: input.Name, MonthlyAmount: input.MonthlyAmount, Active: true}, nil
}

func (s *stubOfferingStore) GetPlanByID(_ context.Context, id int64) (*models.Plan, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubOfferingStore) ListPlansByOffering(_ context.Context, offeringID int64) ([]models.Plan, error) {
	return s.plans[offeringID], nil
}

func (s *stubOfferingStore) UpdatePlan(_ context.Context, id int64, name string, description *string, monthlyAmount float64, active bool) (*models.Plan, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubOfferingStore) DeletePlan(_ context.Context, id int64) (bool, error) {
	return false, nil
}

type stubProgramLister struct {
	programs map[int64][]models.Program
}

func (s *stubProgramLister) ListByOffering(_ context.Context, offeringID int64) ([]models.Program, error) {
	return s.programs[offeringID], nil
}

func TestCreateOfferingRejectsUnknownKind(t *testing.T) {
	service := &OfferingService{offeringRepo: &stubOfferingStore{}, programRepo: &stubProgramLister{}}

	if _, err := service.Create(context.Background(), CreateOfferingInput{Name: "Robotics", Kind: "trial"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.Create(context.Background(), CreateOfferingInput{Name: "  ", Kind: models.OfferingKindProgram}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
}

func TestGetDetailReturnsKindMatchedPayload(t *testing.T) {
	store := &stubOfferingStore{
		offerings: map[int64]*models.Offering{
			1: {ID: 1, Name: "Memberships", Kind: models.OfferingKindSubscription, Active: true},
			2: {ID: 2, Name: "Camps", Kind: models.OfferingKindProgram, Active: true},
		},
		plans: map[int64][]models.Plan{
			1: {{ID: 5, OfferingID: 1, Name: "Twice Weekly", MonthlyAmount: 149}},
		},
	}
	programs := &stubProgramLister{programs: map[int64][]models.Program{
		2: {{ID: 9, OfferingID: 2, Name: "Summer Camp", Price: 400}},
	}}
	service := &OfferingService{offeringRepo: store, programRepo: programs}
	ctx := context.Background()

	sub, err := service.GetDetail(ctx, 1)
	if err != nil {
		t.Fatalf("GetDetail(subscription): %v", err)
	}
	if len(sub.Plans) != 1 || len(sub.Programs) != 0 {
		t.Fatalf("expected plans only for subscription offering, got %d plans %d programs", len(sub.Plans), len(sub.Programs))
	}

	prog, err := service.GetDetail(ctx, 2)
	if err != nil {
		t.Fatalf("GetDetail(program): %v", err)
	}
	if len(prog.Programs) != 1 || len(prog.Plans) != 0 {
		t.Fatalf("expected programs only for program offering, got %d programs %d plans", len(prog.Programs), len(prog.Plans))
	}

	if _, err := service.GetDetail(ctx, 99); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePlanRequiresSubscriptionOffering(t *testing.T) {
	store := &stubOfferingStore{
		offerings: map[int64]*models.Offering{
			1: {ID: 1, Name: "Memberships", Kind: models.OfferingKindSubscription, Active: true},
			2: {ID: 2, Name: "Camps", Kind: models.OfferingKindProgram, Active: true},
		},
	}
	service := &OfferingService{offeringRepo: store, programRepo: &stubProgramLister{}}
	ctx := context.Background()

	if _, err := service.CreatePlan(ctx, CreatePlanInput{OfferingID: 2, Name: "Weekly", MonthlyAmount: 99}); err != ErrKindMismatch {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
	if _, err := service.CreatePlan(ctx, CreatePlanInput{OfferingID: 1, Name: "Weekly", MonthlyAmount: 0}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for non-positive amount, got %v", err)
	}

	plan, err := service.CreatePlan(ctx, CreatePlanInput{OfferingID: 1, Name: "Weekly", MonthlyAmount: 99})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.OfferingID != 1 || plan.MonthlyAmount != 99 {
		t.Fatalf("unexpected plan %+v", plan)
	}
}
