package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
)

type programStore interface {
	Create(ctx context.Context, input repository.CreateProgramInput) (*models.Program, error)
	GetByID(ctx context.Context, id int64) (*models.Program, error)
	List(ctx context.Context) ([]models.Program, error)
	Update(ctx context.Context, id int64, input repository.UpdateProgramInput) (*models.Program, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CreateModule(ctx context.Context, input repository.CreateModuleInput) (*models.Module, error)
	GetModuleByID(ctx context.Context, id int64) (*models.Module, error)
	ListModulesByProgram(ctx context.Context, programID int64) ([]models.Module, error)
	UpdateModule(ctx context.Context, id int64, name string, description *string, estimatedDuration, sortOrder int) (*models.Module, error)
	DeleteModule(ctx context.Context, id int64) (bool, error)
	CreateTopic(ctx context.Context, input repository.CreateTopicInput) (*models.Topic, error)
	ListTopicsByModule(ctx context.Context, moduleID int64) ([]models.Topic, error)
	ListTopicsByProgram(ctx context.Context, programID int64) ([]models.Topic, error)
	UpdateTopic(ctx context.Context, id int64, name string, description *string, estimatedDuration, sortOrder int) (*models.Topic, error)
	DeleteTopic(ctx context.Context, id int64) (bool, error)
}

type offeringReader interface {
	GetByID(ctx context.Context, id int64) (*models.Offering, error)
}

type ProgramService struct {
	programRepo  programStore
	offeringRepo offeringReader
}

func NewProgramService(
	programRepo *repository.ProgramRepository,
	offeringRepo *repository.OfferingRepository,
) *ProgramService {
	return &ProgramService{programRepo: programRepo, offeringRepo: offeringRepo}
}

type CreateProgramInput struct {
	OfferingID        int64
	Name              string
	Description       string
	Price             float64
	EstimatedDuration int
	VideoURL          *string
	ImageURL          *string
}

// Create enforces the program form rules: non-empty name and description,
// positive duration, non-negative price, and a program-kind offering.
func (s *ProgramService) Create(ctx context.Context, input CreateProgramInput) (*models.Program, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" || input.Description == "" || input.EstimatedDuration <= 0 || input.Price < 0 {
		return nil, ErrInvalidInput
	}

	offering, err := s.offeringRepo.GetByID(ctx, input.OfferingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if offering.Kind != models.OfferingKindProgram {
		return nil, ErrKindMismatch
	}

	return s.programRepo.Create(ctx, repository.CreateProgramInput{
		OfferingID:        input.OfferingID,
		Name:              input.Name,
		Description:       input.Description,
		Price:             input.Price,
		EstimatedDuration: input.EstimatedDuration,
		VideoURL:          input.VideoURL,
		ImageURL:          input.ImageURL,
	})
}

func (s *ProgramService) List(ctx context.Context) ([]models.Program, error) {
	return s.programRepo.List(ctx)
}

// ListTopics flattens the program's topic tree, ordered by module then topic
// sort order.
func (s *ProgramService) ListTopics(ctx context.Context, programID int64) ([]models.Topic, error) {
	if _, err := s.programRepo.GetByID(ctx, programID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.programRepo.ListTopicsByProgram(ctx, programID)
}

// GetDetail returns the program with its ordered module and topic tree.
func (s *ProgramService) GetDetail(ctx context.Context, id int64) (*models.ProgramDetail, error) {
	program, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	modules, err := s.programRepo.ListModulesByProgram(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.ProgramDetail{
		Program: *program,
		Modules: make([]models.ModuleDetail, 0, len(modules)),
	}
	for _, module := range modules {
		topics, err := s.programRepo.ListTopicsByModule(ctx, module.ID)
		if err != nil {
			return nil, err
		}
		detail.Modules = append(detail.Modules, models.ModuleDetail{
			Module: module,
			Topics: topics,
		})
	}
	return detail, nil
}

func (s *ProgramService) Update(ctx context.Context, id int64, input repository.UpdateProgramInput) (*models.Program, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" || input.Description == "" || input.EstimatedDuration <= 0 || input.Price < 0 {
		return nil, ErrInvalidInput
	}
	program, err := s.programRepo.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return program, nil
}

func (s *ProgramService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.programRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

type CreateModuleInput struct {
	ProgramID         int64
	Name              string
	Description       *string
	EstimatedDuration int
	SortOrder         int
}

func (s *ProgramService) CreateModule(ctx context.Context, input CreateModuleInput) (*models.Module, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.EstimatedDuration < 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.programRepo.GetByID(ctx, input.ProgramID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.programRepo.CreateModule(ctx, repository.CreateModuleInput{
		ProgramID:         input.ProgramID,
		Name:              input.Name,
		Description:       input.Description,
		EstimatedDuration: input.EstimatedDuration,
		SortOrder:         input.SortOrder,
	})
}

func (s *ProgramService) UpdateModule(
	ctx context.Context,
	id int64,
	name string,
	description *string,
	estimatedDuration, sortOrder int,
) (*models.Module, error) {
	name = strings.TrimSpace(name)
	if name == "" || estimatedDuration < 0 {
		return nil, ErrInvalidInput
	}
	module, err := s.programRepo.UpdateModule(ctx, id, name, description, estimatedDuration, sortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return module, nil
}

func (s *ProgramService) DeleteModule(ctx context.Context, id int64) error {
	deleted, err := s.programRepo.DeleteModule(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

type CreateTopicInput struct {
	ModuleID          int64
	Name              string
	Description       *string
	EstimatedDuration int
	SortOrder         int
}

func (s *ProgramService) CreateTopic(ctx context.Context, input CreateTopicInput) (*models.Topic, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.EstimatedDuration < 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.programRepo.GetModuleByID(ctx, input.ModuleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.programRepo.CreateTopic(ctx, repository.CreateTopicInput{
		ModuleID:          input.ModuleID,
		Name:              input.Name,
		Description:       input.Description,
		EstimatedDuration: input.EstimatedDuration,
		SortOrder:         input.SortOrder,
	})
}

func (s *ProgramService) UpdateTopic(
	ctx context.Context,
	id int64,
	name string,
	description *string,
	estimatedDuration, sortOrder int,
) (*models.Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" || estimatedDuration < 0 {
		return nil, ErrInvalidInput
	}
	topic, err := s.programRepo.UpdateTopic(ctx, id, name, description, estimatedDuration, sortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return topic, nil
}

func (s *ProgramService) DeleteTopic(ctx context.Context, id int64) error {
	deleted, err := s.programRepo.DeleteTopic(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
