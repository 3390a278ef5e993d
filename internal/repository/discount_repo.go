package repository

import (
	"context"
	"time"

	"github.com/juazsh/ata-portal-sub001/internal/models"
)

type CreateDiscountCodeInput struct {
	Code       string
	Percent    int
	Usage      string
	MaxUses    int
	ExpireDate time.Time
	LocationID *int64
}

type DiscountCodeRepository struct {
	db DBTX
}

func NewDiscountCodeRepository(db DBTX) *DiscountCodeRepository {
	return &DiscountCodeRepository{db: db}
}

const discountColumns = `id, code, percent, usage, max_uses, current_uses, expire_date, location_id, active, created_at, updated_at`

func scanDiscount(row interface{ Scan(dest ...any) error }, d *models.DiscountCode) error {
	return row.Scan(
		&d.ID,
		&d.Code,
		&d.Percent,
		&d.Usage,
		&d.MaxUses,
		&d.CurrentUses,
		&d.ExpireDate,
		&d.LocationID,
		&d.Active,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
}

func (r *DiscountCodeRepository) Create(ctx context.Context, input CreateDiscountCodeInput) (*models.DiscountCode, error) {
	query := `
		INSERT INTO discount_codes (code, percent, usage, max_uses, expire_date, location_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + discountColumns
	var code models.DiscountCode
	err := scanDiscount(r.db.QueryRow(
		ctx, query, input.Code, input.Percent, input.Usage, input.MaxUses, input.ExpireDate, input.LocationID,
	), &code)
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *DiscountCodeRepository) GetByID(ctx context.Context, id int64) (*models.DiscountCode, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_codes WHERE id = $1`
	var code models.DiscountCode
	if err := scanDiscount(r.db.QueryRow(ctx, query, id), &code); err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *DiscountCodeRepository) GetByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_codes WHERE code = $1`
	var discount models.DiscountCode
	if err := scanDiscount(r.db.QueryRow(ctx, query, code), &discount); err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *DiscountCodeRepository) GetByCodeForUpdate(ctx context.Context, code string) (*models.DiscountCode, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_codes WHERE code = $1 FOR UPDATE`
	var discount models.DiscountCode
	if err := scanDiscount(r.db.QueryRow(ctx, query, code), &discount); err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *DiscountCodeRepository) List(ctx context.Context) ([]models.DiscountCode, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_codes ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make([]models.DiscountCode, 0)
	for rows.Next() {
		var code models.DiscountCode
		if err := scanDiscount(rows, &code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return codes, nil
}

func (r *DiscountCodeRepository) Update(
	ctx context.Context,
	id int64,
	percent int,
	maxUses int,
	expireDate time.Time,
	active bool,
) (*models.DiscountCode, error) {
	query := `
		UPDATE discount_codes
		SET percent = $2, max_uses = $3, expire_date = $4, active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + discountColumns
	var code models.DiscountCode
	if err := scanDiscount(r.db.QueryRow(ctx, query, id, percent, maxUses, expireDate, active), &code); err != nil {
		return nil, err
	}
	return &code, nil
}

// IncrementUses consumes one redemption. The guard mirrors Usable so a code
// can never go over its limit even under concurrent redemptions.
func (r *DiscountCodeRepository) IncrementUses(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE discount_codes
		SET current_uses = current_uses + 1,
		    active = CASE WHEN usage = 'single' THEN FALSE ELSE active END,
		    updated_at = NOW()
		WHERE id = $1
		  AND active
		  AND expire_date > NOW()
		  AND (usage = 'single' AND current_uses = 0 OR usage = 'multiple' AND current_uses < max_uses)
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *DiscountCodeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM discount_codes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
