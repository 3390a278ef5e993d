package repository

import (
	"context"

	"github.com/juazsh/ata-portal-sub001/internal/models"
)

type CreatePaymentMethodInput struct {
	UserID    int64
	Processor string
	Token     string
	Brand     string
	Last4     string
	ExpMonth  int
	ExpYear   int
	IsDefault bool
}

type PaymentMethodRepository struct {
	db DBTX
}

func NewPaymentMethodRepository(db DBTX) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

const paymentMethodColumns = `id, user_id, processor, token, brand, last4, exp_month, exp_year, is_default, created_at, updated_at`

func scanPaymentMethod(row interface{ Scan(dest ...any) error }, m *models.PaymentMethod) error {
	return row.Scan(
		&m.ID,
		&m.UserID,
		&m.Processor,
		&m.Token,
		&m.Brand,
		&m.Last4,
		&m.ExpMonth,
		&m.ExpYear,
		&m.IsDefault,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

func (r *PaymentMethodRepository) Create(ctx context.Context, input CreatePaymentMethodInput) (*models.PaymentMethod, error) {
	query := `
		INSERT INTO payment_methods (user_id, processor, token, brand, last4, exp_month, exp_year, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + paymentMethodColumns
	var method models.PaymentMethod
	err := scanPaymentMethod(r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.Processor,
		input.Token,
		input.Brand,
		input.Last4,
		input.ExpMonth,
		input.ExpYear,
		input.IsDefault,
	), &method)
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id int64) (*models.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods WHERE id = $1`
	var method models.PaymentMethod
	if err := scanPaymentMethod(r.db.QueryRow(ctx, query, id), &method); err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *PaymentMethodRepository) ListByUserID(ctx context.Context, userID int64) ([]models.PaymentMethod, error) {
	query := `
		SELECT ` + paymentMethodColumns + `
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY is_default DESC, id ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	methods := make([]models.PaymentMethod, 0)
	for rows.Next() {
		var method models.PaymentMethod
		if err := scanPaymentMethod(rows, &method); err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return methods, nil
}

func (r *PaymentMethodRepository) GetDefaultByUserID(ctx context.Context, userID int64) (*models.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods WHERE user_id = $1 AND is_default`
	var method models.PaymentMethod
	if err := scanPaymentMethod(r.db.QueryRow(ctx, query, userID), &method); err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *PaymentMethodRepository) ClearDefault(ctx context.Context, userID int64) error {
	query := `UPDATE payment_methods SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *PaymentMethodRepository) SetDefault(ctx context.Context, id int64) (*models.PaymentMethod, error) {
	query := `
		UPDATE payment_methods
		SET is_default = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + paymentMethodColumns
	var method models.PaymentMethod
	if err := scanPaymentMethod(r.db.QueryRow(ctx, query, id), &method); err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *PaymentMethodRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
