package repository

import (
	"context"

	"github.com/juazsh/ata-portal-sub001/internal/models"
)

type CreateClassSessionInput struct {
	LocationID    int64
	Weekday       string
	StartTime     string
	EndTime       string
	Type          string
	TotalCapacity int
	DemoCapacity  int
}

type ClassSessionRepository struct {
	db DBTX
}

func NewClassSessionRepository(db DBTX) *ClassSessionRepository {
	return &ClassSessionRepository{db: db}
}

const classSessionColumns = `id, location_id, weekday, start_time, end_time, type, total_capacity, available_capacity, demo_capacity, available_demo, active, created_at, updated_at`

func scanClassSession(row interface{ Scan(dest ...any) error }, s *models.ClassSession) error {
	return row.Scan(
		&s.ID,
		&s.LocationID,
		&s.Weekday,
		&s.StartTime,
		&s.EndTime,
		&s.Type,
		&s.TotalCapacity,
		&s.AvailableCapacity,
		&s.DemoCapacity,
		&s.AvailableDemo,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

// Create seeds available capacity to its total: a new session has no seats
// held yet.
func (r *ClassSessionRepository) Create(ctx context.Context, input CreateClassSessionInput) (*models.ClassSession, error) {
	query := `
		INSERT INTO class_sessions (location_id, weekday, start_time, end_time, type, total_capacity, available_capacity, demo_capacity, available_demo)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $7)
		RETURNING ` + classSessionColumns
	var session models.ClassSession
	err := scanClassSession(r.db.QueryRow(
		ctx,
		query,
		input.LocationID,
		input.Weekday,
		input.StartTime,
		input.EndTime,
		input.Type,
		input.TotalCapacity,
		input.DemoCapacity,
	), &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ClassSessionRepository) GetByID(ctx context.Context, id int64) (*models.ClassSession, error) {
	query := `SELECT ` + classSessionColumns + ` FROM class_sessions WHERE id = $1`
	var session models.ClassSession
	if err := scanClassSession(r.db.QueryRow(ctx, query, id), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ClassSessionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.ClassSession, error) {
	query := `SELECT ` + classSessionColumns + ` FROM class_sessions WHERE id = $1 FOR UPDATE`
	var session models.ClassSession
	if err := scanClassSession(r.db.QueryRow(ctx, query, id), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ClassSessionRepository) List(ctx context.Context, locationID int64) ([]models.ClassSession, error) {
	query := `SELECT ` + classSessionColumns + ` FROM class_sessions`
	args := []any{}
	if locationID > 0 {
		query += ` WHERE location_id = $1`
		args = append(args, locationID)
	}
	query += ` ORDER BY weekday ASC, start_time ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.ClassSession, 0)
	for rows.Next() {
		var session models.ClassSession
		if err := scanClassSession(rows, &session); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// UpdateSlot changes the weekly slot fields without touching capacity.
func (r *ClassSessionRepository) UpdateSlot(
	ctx context.Context,
	id int64,
	weekday, startTime, endTime, sessionType string,
	active bool,
) (*models.ClassSession, error) {
	query := `
		UPDATE class_sessions
		SET weekday = $2, start_time = $3, end_time = $4, type = $5, active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + classSessionColumns
	var session models.ClassSession
	err := scanClassSession(
		r.db.QueryRow(ctx, query, id, weekday, startTime, endTime, sessionType, active),
		&session,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SetCapacities writes recomputed capacity values. Callers derive the
// available counts (used seats are preserved) before calling.
func (r *ClassSessionRepository) SetCapacities(
	ctx context.Context,
	id int64,
	totalCapacity, availableCapacity, demoCapacity, availableDemo int,
) (*models.ClassSession, error) {
	query := `
		UPDATE class_sessions
		SET total_capacity = $2, available_capacity = $3, demo_capacity = $4, available_demo = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + classSessionColumns
	var session models.ClassSession
	err := scanClassSession(
		r.db.QueryRow(ctx, query, id, totalCapacity, availableCapacity, demoCapacity, availableDemo),
		&session,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ClassSessionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM class_sessions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
