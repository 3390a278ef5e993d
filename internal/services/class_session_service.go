package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
)

var validWeekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

type ClassSessionService struct {
	db          *pgxpool.Pool
	sessionRepo *repository.ClassSessionRepository
}

func NewClassSessionService(
	db *pgxpool.Pool,
	sessionRepo *repository.ClassSessionRepository,
) *ClassSessionService {
	return &ClassSessionService{db: db, sessionRepo: sessionRepo}
}

type CreateClassSessionInput struct {
	LocationID    int64
	Weekday       string
	StartTime     string
	EndTime       string
	Type          string
	TotalCapacity int
	DemoCapacity  int
}

func validateClassSessionInput(input CreateClassSessionInput) error {
	if input.LocationID <= 0 {
		return ErrInvalidInput
	}
	if _, ok := validWeekdays[strings.ToLower(strings.TrimSpace(input.Weekday))]; !ok {
		return ErrInvalidInput
	}
	if input.Type != models.SessionTypeWeekday && input.Type != models.SessionTypeWeekend {
		return ErrInvalidInput
	}
	if input.StartTime == "" || input.EndTime == "" || input.StartTime >= input.EndTime {
		return ErrInvalidInput
	}
	if input.TotalCapacity <= 0 || input.DemoCapacity < 0 || input.DemoCapacity > input.TotalCapacity {
		return ErrInvalidInput
	}
	return nil
}

func (s *ClassSessionService) Create(ctx context.Context, input CreateClassSessionInput) (*models.ClassSession, error) {
	input.Weekday = strings.ToLower(strings.TrimSpace(input.Weekday))
	if err := validateClassSessionInput(input); err != nil {
		return nil, err
	}
	return s.sessionRepo.Create(ctx, repository.CreateClassSessionInput{
		LocationID:    input.LocationID,
		Weekday:       input.Weekday,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		Type:          input.Type,
		TotalCapacity: input.TotalCapacity,
		DemoCapacity:  input.DemoCapacity,
	})
}

func (s *ClassSessionService) List(ctx context.Context, locationID int64) ([]models.ClassSession, error) {
	return s.sessionRepo.List(ctx, locationID)
}

func (s *ClassSessionService) Get(ctx context.Context, id int64) (*models.ClassSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *ClassSessionService) UpdateSlot(
	ctx context.Context,
	id int64,
	weekday, startTime, endTime, sessionType string,
	active bool,
) (*models.ClassSession, error) {
	weekday = strings.ToLower(strings.TrimSpace(weekday))
	if _, ok := validWeekdays[weekday]; !ok {
		return nil, ErrInvalidInput
	}
	if sessionType != models.SessionTypeWeekday && sessionType != models.SessionTypeWeekend {
		return nil, ErrInvalidInput
	}
	if startTime == "" || endTime == "" || startTime >= endTime {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.UpdateSlot(ctx, id, weekday, startTime, endTime, sessionType, active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

// UpdateCapacities applies a capacity edit while preserving the seats already
// held. The edit runs under a row lock so a concurrent enrollment cannot see
// a half-applied capacity.
func (s *ClassSessionService) UpdateCapacities(
	ctx context.Context,
	id int64,
	newTotal, newDemo int,
) (*models.ClassSession, error) {
	if newTotal <= 0 || newDemo < 0 || newDemo > newTotal {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewClassSessionRepository(tx)

	session, err := txSessionRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	available := RecomputeAvailable(session.TotalCapacity, session.AvailableCapacity, newTotal)
	availableDemo := RecomputeAvailable(session.DemoCapacity, session.AvailableDemo, newDemo)

	updated, err := txSessionRepo.SetCapacities(ctx, id, newTotal, available, newDemo, availableDemo)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ClassSessionService) Delete(ctx context.Context, id int64) error {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if session.TotalCapacity-session.AvailableCapacity > 0 {
		return ErrScheduleHasEnrollments
	}

	deleted, err := s.sessionRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
