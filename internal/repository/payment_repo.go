package repository

import (
	"context"

	"github.com/juazsh/ata-portal-sub001/internal/models"
)

type CreatePaymentInput struct {
	EnrollmentID  int64
	Amount        float64
	Status        string
	Processor     string
	TransactionID *string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, enrollment_id, amount, status, processor, transaction_id, created_at`

func scanPayment(row interface{ Scan(dest ...any) error }, p *models.PaymentRecord) error {
	return row.Scan(&p.ID, &p.EnrollmentID, &p.Amount, &p.Status, &p.Processor, &p.TransactionID, &p.CreatedAt)
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.PaymentRecord, error) {
	query := `
		INSERT INTO payments (enrollment_id, amount, status, processor, transaction_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + paymentColumns
	var payment models.PaymentRecord
	err := scanPayment(r.db.QueryRow(
		ctx, query, input.EnrollmentID, input.Amount, input.Status, input.Processor, input.TransactionID,
	), &payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetLatestByEnrollmentIDForUpdate(
	ctx context.Context,
	enrollmentID int64,
) (*models.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE enrollment_id = $1
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE
	`
	var payment models.PaymentRecord
	if err := scanPayment(r.db.QueryRow(ctx, query, enrollmentID), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByEnrollmentID(ctx context.Context, enrollmentID int64) ([]models.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE enrollment_id = $1
		ORDER BY id DESC
	`
	rows, err := r.db.Query(ctx, query, enrollmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.PaymentRecord, 0)
	for rows.Next() {
		var payment models.PaymentRecord
		if err := scanPayment(rows, &payment); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

// ListByEnrollmentIDs returns the most recent payment per enrollment.
func (r *PaymentRepository) ListByEnrollmentIDs(
	ctx context.Context,
	enrollmentIDs []int64,
) (map[int64]models.PaymentRecord, error) {
	payments := make(map[int64]models.PaymentRecord, len(enrollmentIDs))
	if len(enrollmentIDs) == 0 {
		return payments, nil
	}

	query := `
		SELECT DISTINCT ON (enrollment_id) ` + paymentColumns + `
		FROM payments
		WHERE enrollment_id = ANY($1)
		ORDER BY enrollment_id, id DESC
	`
	rows, err := r.db.Query(ctx, query, enrollmentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var payment models.PaymentRecord
		if err := scanPayment(rows, &payment); err != nil {
			return nil, err
		}
		payments[payment.EnrollmentID] = payment
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PaymentRepository) UpdateStatus(
	ctx context.Context,
	paymentID int64,
	status string,
	transactionID *string,
) (*models.PaymentRecord, error) {
	query := `
		UPDATE payments
		SET status = $2, transaction_id = COALESCE($3, transaction_id)
		WHERE id = $1
		RETURNING ` + paymentColumns
	var payment models.PaymentRecord
	if err := scanPayment(r.db.QueryRow(ctx, query, paymentID, status, transactionID), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
