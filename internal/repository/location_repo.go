package repository

import (
	"context"

	"github.com/juazsh/ata-portal-sub001/internal/models"
)

type CreateLocationInput struct {
	Name    string
	Address string
	City    string
	State   string
	Zip     string
	Phone   *string
}

type LocationRepository struct {
	db DBTX
}

func NewLocationRepository(db DBTX) *LocationRepository {
	return &LocationRepository{db: db}
}

const locationColumns = `id, name, address, city, state, zip, phone, active, created_at, updated_at`

func scanLocation(row interface{ Scan(dest ...any) error }, loc *models.Location) error {
	return row.Scan(
		&loc.ID,
		&loc.Name,
		&loc.Address,
		&loc.City,
		&loc.State,
		&loc.Zip,
		&loc.Phone,
		&loc.Active,
		&loc.CreatedAt,
		&loc.UpdatedAt,
	)
}

func (r *LocationRepository) Create(ctx context.Context, input CreateLocationInput) (*models.Location, error) {
	query := `
		INSERT INTO locations (name, address, city, state, zip, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + locationColumns
	var loc models.Location
	err := scanLocation(
		r.db.QueryRow(ctx, query, input.Name, input.Address, input.City, input.State, input.Zip, input.Phone),
		&loc,
	)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	var loc models.Location
	if err := scanLocation(r.db.QueryRow(ctx, query, id), &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *LocationRepository) List(ctx context.Context) ([]models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY name ASC, id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]models.Location, 0)
	for rows.Next() {
		var loc models.Location
		if err := scanLocation(rows, &loc); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

func (r *LocationRepository) Update(ctx context.Context, id int64, input CreateLocationInput, active bool) (*models.Location, error) {
	query := `
		UPDATE locations
		SET name = $2, address = $3, city = $4, state = $5, zip = $6, phone = $7, active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + locationColumns
	var loc models.Location
	err := scanLocation(
		r.db.QueryRow(ctx, query, id, input.Name, input.Address, input.City, input.State, input.Zip, input.Phone, active),
		&loc,
	)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *LocationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
