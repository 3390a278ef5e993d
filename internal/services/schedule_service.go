package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
)

type ScheduleService struct {
	db           *pgxpool.Pool
	scheduleRepo *repository.ScheduleRepository
	offeringRepo *repository.OfferingRepository
	programRepo  *repository.ProgramRepository
	now          func() time.Time
}

func NewScheduleService(
	db *pgxpool.Pool,
	scheduleRepo *repository.ScheduleRepository,
	offeringRepo *repository.OfferingRepository,
	programRepo *repository.ProgramRepository,
) *ScheduleService {
	return &ScheduleService{
		db:           db,
		scheduleRepo: scheduleRepo,
		offeringRepo: offeringRepo,
		programRepo:  programRepo,
		now:          time.Now,
	}
}

type CreateScheduleInput struct {
	Date           time.Time
	LocationID     int64
	ClassSessionID int64
	PlanID         *int64
	ProgramID      *int64
	TotalCapacity  int
	DemoCapacity   int
}

// Create validates the plan/program alternative: exactly one must be set,
// and it must reference a row whose offering kind matches.
func (s *ScheduleService) Create(ctx context.Context, input CreateScheduleInput) (*models.Schedule, error) {
	if input.LocationID <= 0 || input.ClassSessionID <= 0 {
		return nil, ErrInvalidInput
	}
	if (input.PlanID == nil) == (input.ProgramID == nil) {
		return nil, ErrInvalidInput
	}
	if input.TotalCapacity <= 0 || input.DemoCapacity < 0 || input.DemoCapacity > input.TotalCapacity {
		return nil, ErrInvalidInput
	}
	if input.Date.Before(truncateToDay(s.now())) {
		return nil, ErrInvalidInput
	}

	if input.PlanID != nil {
		if _, err := s.offeringRepo.GetPlanByID(ctx, *input.PlanID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}
	if input.ProgramID != nil {
		if _, err := s.programRepo.GetByID(ctx, *input.ProgramID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	return s.scheduleRepo.Create(ctx, repository.CreateScheduleInput{
		Date:           input.Date,
		LocationID:     input.LocationID,
		ClassSessionID: input.ClassSessionID,
		PlanID:         input.PlanID,
		ProgramID:      input.ProgramID,
		TotalCapacity:  input.TotalCapacity,
		DemoCapacity:   input.DemoCapacity,
	})
}

func (s *ScheduleService) List(ctx context.Context, filter repository.ScheduleListFilter) ([]models.Schedule, int, error) {
	schedules, err := s.scheduleRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.scheduleRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return schedules, total, nil
}

func (s *ScheduleService) Get(ctx context.Context, id int64) (*models.Schedule, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return schedule, nil
}

type UpdateScheduleInput struct {
	Date           time.Time
	LocationID     int64
	ClassSessionID int64
	PlanID         *int64
	ProgramID      *int64
}

// Update corrects a schedule's date, location, class session, or offering
// reference, with the same checks as Create. The offering reference is
// frozen once students are enrolled; capacities go through UpdateCapacities.
func (s *ScheduleService) Update(ctx context.Context, id int64, input UpdateScheduleInput) (*models.Schedule, error) {
	if input.LocationID <= 0 || input.ClassSessionID <= 0 {
		return nil, ErrInvalidInput
	}
	if (input.PlanID == nil) == (input.ProgramID == nil) {
		return nil, ErrInvalidInput
	}
	if input.Date.Before(truncateToDay(s.now())) {
		return nil, ErrInvalidInput
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if schedule.EnrolledCount() > 0 &&
		(!sameRef(schedule.PlanID, input.PlanID) || !sameRef(schedule.ProgramID, input.ProgramID)) {
		return nil, ErrScheduleHasEnrollments
	}

	if input.PlanID != nil {
		if _, err := s.offeringRepo.GetPlanByID(ctx, *input.PlanID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}
	if input.ProgramID != nil {
		if _, err := s.programRepo.GetByID(ctx, *input.ProgramID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	return s.scheduleRepo.Update(ctx, id, repository.UpdateScheduleInput{
		Date:           input.Date,
		LocationID:     input.LocationID,
		ClassSessionID: input.ClassSessionID,
		PlanID:         input.PlanID,
		ProgramID:      input.ProgramID,
	})
}

func sameRef(a, b *int64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

// UpdateCapacities mirrors the class-session rule: held seats survive the
// edit and availability floors at zero.
func (s *ScheduleService) UpdateCapacities(ctx context.Context, id int64, newTotal, newDemo int) (*models.Schedule, error) {
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

	txScheduleRepo := repository.NewScheduleRepository(tx)

	schedule, err := txScheduleRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	available := RecomputeAvailable(schedule.TotalCapacity, schedule.AvailableCapacity, newTotal)
	availableDemo := RecomputeAvailable(schedule.DemoCapacity, schedule.AvailableDemo, newDemo)

	updated, err := txScheduleRepo.SetCapacities(ctx, id, newTotal, available, newDemo, availableDemo)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete refuses to remove a schedule that still has enrolled students.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	schedule, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if schedule.EnrolledCount() > 0 {
		return ErrScheduleHasEnrollments
	}

	deleted, err := s.scheduleRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
