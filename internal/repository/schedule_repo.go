package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/juazsh/ata-portal-sub001/internal/models"
)

type CreateScheduleInput struct {
	Date           time.Time
	LocationID     int64
	ClassSessionID int64
	PlanID         *int64
	ProgramID      *int64
	TotalCapacity  int
	DemoCapacity   int
}

type UpdateScheduleInput struct {
	Date           time.Time
	LocationID     int64
	ClassSessionID int64
	PlanID         *int64
	ProgramID      *int64
}

type ScheduleListFilter struct {
	LocationID int64
	ProgramID  int64
	PlanID     int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

func (f ScheduleListFilter) whereClause() (string, []any) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if f.LocationID > 0 {
		args = append(args, f.LocationID)
		whereParts = append(whereParts, fmt.Sprintf("location_id = $%d", len(args)))
	}
	if f.ProgramID > 0 {
		args = append(args, f.ProgramID)
		whereParts = append(whereParts, fmt.Sprintf("program_id = $%d", len(args)))
	}
	if f.PlanID > 0 {
		args = append(args, f.PlanID)
		whereParts = append(whereParts, fmt.Sprintf("plan_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		whereParts = append(whereParts, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		whereParts = append(whereParts, fmt.Sprintf("date <= $%d", len(args)))
	}

	return strings.Join(whereParts, " AND "), args
}

type ScheduleRepository struct {
	db DBTX
}

func NewScheduleRepository(db DBTX) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, date, location_id, class_session_id, plan_id, program_id, total_capacity, available_capacity, demo_capacity, available_demo, created_at, updated_at`

func scanSchedule(row interface{ Scan(dest ...any) error }, s *models.Schedule) error {
	return row.Scan(
		&s.ID,
		&s.Date,
		&s.LocationID,
		&s.ClassSessionID,
		&s.PlanID,
		&s.ProgramID,
		&s.TotalCapacity,
		&s.AvailableCapacity,
		&s.DemoCapacity,
		&s.AvailableDemo,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

func (r *ScheduleRepository) Create(ctx context.Context, input CreateScheduleInput) (*models.Schedule, error) {
	query := `
		INSERT INTO schedules (date, location_id, class_session_id, plan_id, program_id, total_capacity, available_capacity, demo_capacity, available_demo)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $7)
		RETURNING ` + scheduleColumns
	var schedule models.Schedule
	err := scanSchedule(r.db.QueryRow(
		ctx,
		query,
		input.Date,
		input.LocationID,
		input.ClassSessionID,
		input.PlanID,
		input.ProgramID,
		input.TotalCapacity,
		input.DemoCapacity,
	), &schedule)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	var schedule models.Schedule
	if err := scanSchedule(r.db.QueryRow(ctx, query, id), &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1 FOR UPDATE`
	var schedule models.Schedule
	if err := scanSchedule(r.db.QueryRow(ctx, query, id), &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) List(ctx context.Context, filter ScheduleListFilter) ([]models.Schedule, error) {
	where, args := filter.whereClause()

	query := fmt.Sprintf(`
		SELECT %s
		FROM schedules
		WHERE %s
		ORDER BY date ASC, id ASC
	`, scheduleColumns, where)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]models.Schedule, 0)
	for rows.Next() {
		var schedule models.Schedule
		if err := scanSchedule(rows, &schedule); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *ScheduleRepository) Count(ctx context.Context, filter ScheduleListFilter) (int, error) {
	where, args := filter.whereClause()
	query := fmt.Sprintf(`SELECT COUNT(*) FROM schedules WHERE %s`, where)
	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Update edits the slot fields and the offering reference. Capacity columns
// move through SetCapacities only.
func (r *ScheduleRepository) Update(ctx context.Context, id int64, input UpdateScheduleInput) (*models.Schedule, error) {
	query := `
		UPDATE schedules
		SET date = $2, location_id = $3, class_session_id = $4, plan_id = $5, program_id = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + scheduleColumns
	var schedule models.Schedule
	err := scanSchedule(r.db.QueryRow(
		ctx,
		query,
		id,
		input.Date,
		input.LocationID,
		input.ClassSessionID,
		input.PlanID,
		input.ProgramID,
	), &schedule)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ReserveSeat atomically takes one regular seat. Returns false when the
// schedule is full or missing.
func (r *ScheduleRepository) ReserveSeat(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE schedules
		SET available_capacity = available_capacity - 1, updated_at = NOW()
		WHERE id = $1 AND available_capacity > 0
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReleaseSeat returns one regular seat, capped at the total.
func (r *ScheduleRepository) ReleaseSeat(ctx context.Context, id int64) error {
	query := `
		UPDATE schedules
		SET available_capacity = LEAST(available_capacity + 1, total_capacity), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *ScheduleRepository) SetCapacities(
	ctx context.Context,
	id int64,
	totalCapacity, availableCapacity, demoCapacity, availableDemo int,
) (*models.Schedule, error) {
	query := `
		UPDATE schedules
		SET total_capacity = $2, available_capacity = $3, demo_capacity = $4, available_demo = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + scheduleColumns
	var schedule models.Schedule
	err := scanSchedule(
		r.db.QueryRow(ctx, query, id, totalCapacity, availableCapacity, demoCapacity, availableDemo),
		&schedule,
	)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
