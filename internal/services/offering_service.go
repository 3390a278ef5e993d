package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
)

type offeringStore interface {
	Create(ctx context.Context, input repository.CreateOfferingInput) (*models.Offering, error)
	GetByID(ctx context.Context, id int64) (*models.Offering, error)
	List(ctx context.Context) ([]models.Offering, error)
	Update(ctx context.Context, id int64, name string, description *string, active bool) (*models.Offering, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CreatePlan(ctx context.Context, input repository.CreatePlanInput) (*models.Plan, error)
	GetPlanByID(ctx context.Context, id int64) (*models.Plan, error)
	ListPlansByOffering(ctx context.Context, offeringID int64) ([]models.Plan, error)
	UpdatePlan(ctx context.Context, id int64, name string, description *string, monthlyAmount float64, active bool) (*models.Plan, error)
	DeletePlan(ctx context.Context, id int64) (bool, error)
}

type offeringProgramLister interface {
	ListByOffering(ctx context.Context, offeringID int64) ([]models.Program, error)
}

type OfferingService struct {
	offeringRepo offeringStore
	programRepo  offeringProgramLister
}

func NewOfferingService(
	offeringRepo *repository.OfferingRepository,
	programRepo *repository.ProgramRepository,
) *OfferingService {
	return &OfferingService{offeringRepo: offeringRepo, programRepo: programRepo}
}

type CreateOfferingInput struct {
	Name        string
	Description *string
	Kind        models.OfferingKind
}

func (s *OfferingService) Create(ctx context.Context, input CreateOfferingInput) (*models.Offering, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || !models.IsValidOfferingKind(input.Kind) {
		return nil, ErrInvalidInput
	}
	return s.offeringRepo.Create(ctx, repository.CreateOfferingInput{
		Name:        input.Name,
		Description: input.Description,
		Kind:        input.Kind,
	})
}

func (s *OfferingService) List(ctx context.Context) ([]models.Offering, error) {
	return s.offeringRepo.List(ctx)
}

// GetDetail loads the offering with the variant payload its kind calls for.
func (s *OfferingService) GetDetail(ctx context.Context, id int64) (*models.OfferingDetail, error) {
	offering, err := s.offeringRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	detail := &models.OfferingDetail{Offering: *offering}
	switch offering.Kind {
	case models.OfferingKindSubscription:
		plans, err := s.offeringRepo.ListPlansByOffering(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Plans = plans
	case models.OfferingKindProgram:
		programs, err := s.programRepo.ListByOffering(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Programs = programs
	}
	return detail, nil
}

func (s *OfferingService) Update(
	ctx context.Context,
	id int64,
	name string,
	description *string,
	active bool,
) (*models.Offering, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	offering, err := s.offeringRepo.Update(ctx, id, name, description, active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return offering, nil
}

func (s *OfferingService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.offeringRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

type CreatePlanInput struct {
	OfferingID    int64
	Name          string
	Description   *string
	MonthlyAmount float64
}

// CreatePlan attaches a plan to a subscription offering. Program offerings
// reject plans outright.
func (s *OfferingService) CreatePlan(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.MonthlyAmount <= 0 {
		return nil, ErrInvalidInput
	}

	offering, err := s.offeringRepo.GetByID(ctx, input.OfferingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if offering.Kind != models.OfferingKindSubscription {
		return nil, ErrKindMismatch
	}

	return s.offeringRepo.CreatePlan(ctx, repository.CreatePlanInput{
		OfferingID:    input.OfferingID,
		Name:          input.Name,
		Description:   input.Description,
		MonthlyAmount: input.MonthlyAmount,
	})
}

func (s *OfferingService) UpdatePlan(
	ctx context.Context,
	id int64,
	name string,
	description *string,
	monthlyAmount float64,
	active bool,
) (*models.Plan, error) {
	name = strings.TrimSpace(name)
	if name == "" || monthlyAmount <= 0 {
		return nil, ErrInvalidInput
	}
	plan, err := s.offeringRepo.UpdatePlan(ctx, id, name, description, monthlyAmount, active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *OfferingService) DeletePlan(ctx context.Context, id int64) error {
	deleted, err := s.offeringRepo.DeletePlan(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
