package repository

import (
	"context"

	"github.com/juazsh/ata-portal-sub001/internal/models"
)

type CreateOfferingInput struct {
	Name        string
	Description *string
	Kind        models.OfferingKind
}

type CreatePlanInput struct {
	OfferingID    int64
	Name          string
	Description   *string
	MonthlyAmount float64
}

type OfferingRepository struct {
	db DBTX
}

func NewOfferingRepository(db DBTX) *OfferingRepository {
	return &OfferingRepository{db: db}
}

const offeringColumns = `id, name, description, kind, active, created_at, updated_at`

func scanOffering(row interface{ Scan(dest ...any) error }, o *models.Offering) error {
	return row.Scan(&o.ID, &o.Name, &o.Description, &o.Kind, &o.Active, &o.CreatedAt, &o.UpdatedAt)
}

func (r *OfferingRepository) Create(ctx context.Context, input CreateOfferingInput) (*models.Offering, error) {
	query := `
		INSERT INTO offerings (name, description, kind)
		VALUES ($1, $2, $3)
		RETURNING ` + offeringColumns
	var offering models.Offering
	if err := scanOffering(r.db.QueryRow(ctx, query, input.Name, input.Description, input.Kind), &offering); err != nil {
		return nil, err
	}
	return &offering, nil
}

func (r *OfferingRepository) GetByID(ctx context.Context, id int64) (*models.Offering, error) {
	query := `SELECT ` + offeringColumns + ` FROM offerings WHERE id = $1`
	var offering models.Offering
	if err := scanOffering(r.db.QueryRow(ctx, query, id), &offering); err != nil {
		return nil, err
	}
	return &offering, nil
}

func (r *OfferingRepository) List(ctx context.Context) ([]models.Offering, error) {
	query := `SELECT ` + offeringColumns + ` FROM offerings ORDER BY name ASC, id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offerings := make([]models.Offering, 0)
	for rows.Next() {
		var offering models.Offering
		if err := scanOffering(rows, &offering); err != nil {
			return nil, err
		}
		offerings = append(offerings, offering)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return offerings, nil
}

// Update changes name, description and active flag. The kind is immutable:
// changing it would orphan the plans or programs hanging off the offering.
func (r *OfferingRepository) Update(
	ctx context.Context,
	id int64,
	name string,
	description *string,
	active bool,
) (*models.Offering, error) {
	query := `
		UPDATE offerings
		SET name = $2, description = $3, active = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + offeringColumns
	var offering models.Offering
	if err := scanOffering(r.db.QueryRow(ctx, query, id, name, description, active), &offering); err != nil {
		return nil, err
	}
	return &offering, nil
}

func (r *OfferingRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM offerings WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const planColumns = `id, offering_id, name, description, monthly_amount, active, created_at, updated_at`

func scanPlan(row interface{ Scan(dest ...any) error }, p *models.Plan) error {
	return row.Scan(&p.ID, &p.OfferingID, &p.Name, &p.Description, &p.MonthlyAmount, &p.Active, &p.CreatedAt, &p.UpdatedAt)
}

func (r *OfferingRepository) CreatePlan(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	query := `
		INSERT INTO plans (offering_id, name, description, monthly_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + planColumns
	var plan models.Plan
	err := scanPlan(
		r.db.QueryRow(ctx, query, input.OfferingID, input.Name, input.Description, input.MonthlyAmount),
		&plan,
	)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *OfferingRepository) GetPlanByID(ctx context.Context, id int64) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	var plan models.Plan
	if err := scanPlan(r.db.QueryRow(ctx, query, id), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *OfferingRepository) ListPlansByOffering(ctx context.Context, offeringID int64) ([]models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE offering_id = $1 ORDER BY monthly_amount ASC, id ASC`
	rows, err := r.db.Query(ctx, query, offeringID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.Plan, 0)
	for rows.Next() {
		var plan models.Plan
		if err := scanPlan(rows, &plan); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *OfferingRepository) UpdatePlan(
	ctx context.Context,
	id int64,
	name string,
	description *string,
	monthlyAmount float64,
	active bool,
) (*models.Plan, error) {
	query := `
		UPDATE plans
		SET name = $2, description = $3, monthly_amount = $4, active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + planColumns
	var plan models.Plan
	if err := scanPlan(r.db.QueryRow(ctx, query, id, name, description, monthlyAmount, active), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *OfferingRepository) DeletePlan(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
