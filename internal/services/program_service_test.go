package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
)

type stubProgramStore struct {
	programs map[int64]*models.Program
	topics   map[int64][]models.Topic
	created  *repository.CreateProgramInput
}

func (s *stubProgramStore) Create(_ context.Context, input repository.CreateProgramInput) (*models.Program, error) {
	s.created = &input
	return &models.Program{ID: 1, OfferingID: input.OfferingID, Name: input.Name, Active: true}, nil
}

func (s *stubProgramStore) GetByID(_ context.Context, id int64) (*models.Program, error) {
	if p, ok := s.programs[id]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubProgramStore) List(_ context.Context) ([]models.Program, error) { return nil, nil }

func (s *stubProgramStore) Update(_ context.Context, id int64, input repository.UpdateProgramInput) (*models.Program, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubProgramStore) Delete(_ context.Context, id int64) (bool, error) { return false, nil }

func (s *stubProgramStore) CreateModule(_ context.Context, input repository.CreateModuleInput) (*models.Module, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubProgramStore) GetModuleByID(_ context.Context, id int64) (*models.Module, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubProgramStore) ListModulesByProgram(_ context.Context, programID int64) ([]models.Module, error) {
	return nil, nil
}

func (s *stubProgramStore) UpdateModule(_ context.Context, id int64, name string, description *string, estimatedDuration, sortOrder int) (*models.Module, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubProgramStore) DeleteModule(_ context.Context, id int64) (bool, error) {
	return false, nil
}

func (s *stubProgramStore) CreateTopic(_ context.Context, input repository.CreateTopicInput) (*models.Topic, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubProgramStore) ListTopicsByModule(_ context.Context, moduleID int64) ([]models.Topic, error) {
	return nil, nil
}

func (s *stubProgramStore) ListTopicsByProgram(_ context.Context, programID int64) ([]models.Topic, error) {
	return s.topics[programID], nil
}

func (s *stubProgramStore) UpdateTopic(_ context.Context, id int64, name string, description *string, estimatedDuration, sortOrder int) (*models.Topic, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubProgramStore) DeleteTopic(_ context.Context, id int64) (bool, error) {
	return false, nil
}

func TestCreateProgramRejections(t *testing.T) {
	offerings := &stubOfferingStore{offerings: map[int64]*models.Offering{
		5: {ID: 5, Name: "STEM", Kind: models.OfferingKindProgram},
		6: {ID: 6, Name: "Monthly", Kind: models.OfferingKindSubscription},
	}}
	service := &ProgramService{programRepo: &stubProgramStore{}, offeringRepo: offerings}

	valid := CreateProgramInput{
		OfferingID:        5,
		Name:              "Robotics",
		Description:       "Build and program robots",
		Price:             100,
		EstimatedDuration: 12,
	}

	cases := []struct {
		name    string
		mutate  func(*CreateProgramInput)
		wantErr error
	}{
		{"blank name", func(in *CreateProgramInput) { in.Name = "  " }, ErrInvalidInput},
		{"blank description", func(in *CreateProgramInput) { in.Description = "" }, ErrInvalidInput},
		{"zero duration", func(in *CreateProgramInput) { in.EstimatedDuration = 0 }, ErrInvalidInput},
		{"negative price", func(in *CreateProgramInput) { in.Price = -1 }, ErrInvalidInput},
		{"missing offering", func(in *CreateProgramInput) { in.OfferingID = 99 }, ErrNotFound},
		{"subscription offering", func(in *CreateProgramInput) { in.OfferingID = 6 }, ErrKindMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			if _, err := service.Create(context.Background(), input); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateProgramTrimsFields(t *testing.T) {
	store := &stubProgramStore{}
	offerings := &stubOfferingStore{offerings: map[int64]*models.Offering{
		5: {ID: 5, Name: "STEM", Kind: models.OfferingKindProgram},
	}}
	service := &ProgramService{programRepo: store, offeringRepo: offerings}

	_, err := service.Create(context.Background(), CreateProgramInput{
		OfferingID:        5,
		Name:              "  Robotics  ",
		Description:       " Build and program robots ",
		Price:             100,
		EstimatedDuration: 12,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if store.created == nil {
		t.Fatal("expected a create call")
	}
	if store.created.Name != "Robotics" || store.created.Description != "Build and program robots" {
		t.Errorf("expected trimmed fields, got %q / %q", store.created.Name, store.created.Description)
	}
}

func TestListTopicsRequiresProgram(t *testing.T) {
	service := &ProgramService{programRepo: &stubProgramStore{}, offeringRepo: &stubOfferingStore{}}

	if _, err := service.ListTopics(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTopicsReturnsProgramTree(t *testing.T) {
	store := &stubProgramStore{
		programs: map[int64]*models.Program{8: {ID: 8, Name: "Robotics"}},
		topics: map[int64][]models.Topic{8: {
			{ID: 1, ModuleID: 3, Name: "Sensors", SortOrder: 1},
			{ID: 2, ModuleID: 3, Name: "Motors", SortOrder: 2},
		}},
	}
	service := &ProgramService{programRepo: store, offeringRepo: &stubOfferingStore{}}

	topics, err := service.ListTopics(context.Background(), 8)
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(topics))
	}
	if topics[0].Name != "Sensors" || topics[1].Name != "Motors" {
		t.Errorf("unexpected topic order: %q, %q", topics[0].Name, topics[1].Name)
	}
}
