package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/juazsh/ata-portal-sub001/internal/models"
)

type CreateEnrollmentInput struct {
	StudentID        int64
	ParentID         int64
	ScheduleID       int64
	ProgramID        *int64
	PlanID           *int64
	Processor        string
	BaseAmount       float64
	DiscountAmount   float64
	AdminFee         float64
	TaxAmount        float64
	TotalAmount      float64
	AutoPayEnabled   bool
	DiscountCodeID   *int64
	SubscriptionID   *string
	MonthlyAmount    *float64
	NextPaymentDueAt *time.Time
}

type EnrollmentListFilter struct {
	ParentID  int64
	StudentID int64
	Status    string
}

type EnrollmentRepository struct {
	db DBTX
}

func NewEnrollmentRepository(db DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, student_id, parent_id, schedule_id, program_id, plan_id, status, processor, base_amount, discount_amount, admin_fee, tax_amount, total_amount, auto_pay_enabled, discount_code_id, subscription_id, monthly_amount, next_payment_due_at, created_at, updated_at`

func scanEnrollment(row interface{ Scan(dest ...any) error }, e *models.Enrollment) error {
	return row.Scan(
		&e.ID,
		&e.StudentID,
		&e.ParentID,
		&e.ScheduleID,
		&e.ProgramID,
		&e.PlanID,
		&e.Status,
		&e.Processor,
		&e.BaseAmount,
		&e.DiscountAmount,
		&e.AdminFee,
		&e.TaxAmount,
		&e.TotalAmount,
		&e.AutoPayEnabled,
		&e.DiscountCodeID,
		&e.SubscriptionID,
		&e.MonthlyAmount,
		&e.NextPaymentDueAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}

func (r *EnrollmentRepository) Create(ctx context.Context, input CreateEnrollmentInput) (*models.Enrollment, error) {
	query := `
		INSERT INTO enrollments (
			student_id, parent_id, schedule_id, program_id, plan_id, status, processor,
			base_amount, discount_amount, admin_fee, tax_amount, total_amount,
			auto_pay_enabled, discount_code_id, subscription_id, monthly_amount, next_payment_due_at
		)
		VALUES ($1, $2, $3, $4, $5, 'pending_payment', $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + enrollmentColumns
	var enrollment models.Enrollment
	err := scanEnrollment(r.db.QueryRow(
		ctx,
		query,
		input.StudentID,
		input.ParentID,
		input.ScheduleID,
		input.ProgramID,
		input.PlanID,
		input.Processor,
		input.BaseAmount,
		input.DiscountAmount,
		input.AdminFee,
		input.TaxAmount,
		input.TotalAmount,
		input.AutoPayEnabled,
		input.DiscountCodeID,
		input.SubscriptionID,
		input.MonthlyAmount,
		input.NextPaymentDueAt,
	), &enrollment)
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := scanEnrollment(r.db.QueryRow(ctx, query, id), &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1 FOR UPDATE`
	var enrollment models.Enrollment
	if err := scanEnrollment(r.db.QueryRow(ctx, query, id), &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) List(ctx context.Context, filter EnrollmentListFilter) ([]models.Enrollment, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.ParentID > 0 {
		args = append(args, filter.ParentID)
		whereParts = append(whereParts, fmt.Sprintf("parent_id = $%d", len(args)))
	}
	if filter.StudentID > 0 {
		args = append(args, filter.StudentID)
		whereParts = append(whereParts, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM enrollments
		WHERE %s
		ORDER BY created_at DESC, id DESC
	`, enrollmentColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]models.Enrollment, 0)
	for rows.Next() {
		var enrollment models.Enrollment
		if err := scanEnrollment(rows, &enrollment); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

// HasActiveForStudentSchedule reports whether the student already holds a
// live (not cancelled, not failed) enrollment on the schedule.
func (r *EnrollmentRepository) HasActiveForStudentSchedule(
	ctx context.Context,
	studentID, scheduleID int64,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM enrollments
			WHERE student_id = $1
			  AND schedule_id = $2
			  AND status IN ('pending_payment', 'paid')
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, studentID, scheduleID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *EnrollmentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	enrollmentID int64,
	currentStatus string,
	nextStatus string,
) (*models.Enrollment, error) {
	query := `
		UPDATE enrollments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + enrollmentColumns
	var enrollment models.Enrollment
	if err := scanEnrollment(r.db.QueryRow(ctx, query, enrollmentID, currentStatus, nextStatus), &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) SetNextPaymentDue(
	ctx context.Context,
	enrollmentID int64,
	nextDue time.Time,
) error {
	query := `UPDATE enrollments SET next_payment_due_at = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, enrollmentID, nextDue)
	return err
}
