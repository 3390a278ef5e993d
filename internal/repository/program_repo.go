package repository

import (
	"context"

	"github.com/juazsh/ata-portal-sub001/internal/models"
)

type CreateProgramInput struct {
	OfferingID        int64
	Name              string
	Description       string
	Price             float64
	EstimatedDuration int
	VideoURL          *string
	ImageURL          *string
}

type UpdateProgramInput struct {
	Name              string
	Description       string
	Price             float64
	EstimatedDuration int
	VideoURL          *string
	ImageURL          *string
	Active            bool
}

type CreateModuleInput struct {
	ProgramID         int64
	Name              string
	Description       *string
	EstimatedDuration int
	SortOrder         int
}

type CreateTopicInput struct {
	ModuleID          int64
	Name              string
	Description       *string
	EstimatedDuration int
	SortOrder         int
}

type ProgramRepository struct {
	db DBTX
}

func NewProgramRepository(db DBTX) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = `id, offering_id, name, description, price, estimated_duration, video_url, image_url, active, created_at, updated_at`

func scanProgram(row interface{ Scan(dest ...any) error }, p *models.Program) error {
	return row.Scan(
		&p.ID,
		&p.OfferingID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.EstimatedDuration,
		&p.VideoURL,
		&p.ImageURL,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *ProgramRepository) Create(ctx context.Context, input CreateProgramInput) (*models.Program, error) {
	query := `
		INSERT INTO programs (offering_id, name, description, price, estimated_duration, video_url, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + programColumns
	var program models.Program
	err := scanProgram(r.db.QueryRow(
		ctx,
		query,
		input.OfferingID,
		input.Name,
		input.Description,
		input.Price,
		input.EstimatedDuration,
		input.VideoURL,
		input.ImageURL,
	), &program)
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE id = $1`
	var program models.Program
	if err := scanProgram(r.db.QueryRow(ctx, query, id), &program); err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *ProgramRepository) List(ctx context.Context) ([]models.Program, error) {
	return r.listPrograms(ctx, `SELECT `+programColumns+` FROM programs ORDER BY name ASC, id ASC`)
}

func (r *ProgramRepository) ListByOffering(ctx context.Context, offeringID int64) ([]models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE offering_id = $1 ORDER BY name ASC, id ASC`
	return r.listPrograms(ctx, query, offeringID)
}

func (r *ProgramRepository) listPrograms(ctx context.Context, query string, args ...any) ([]models.Program, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := make([]models.Program, 0)
	for rows.Next() {
		var program models.Program
		if err := scanProgram(rows, &program); err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return programs, nil
}

func (r *ProgramRepository) Update(ctx context.Context, id int64, input UpdateProgramInput) (*models.Program, error) {
	query := `
		UPDATE programs
		SET name = $2, description = $3, price = $4, estimated_duration = $5,
		    video_url = $6, image_url = $7, active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + programColumns
	var program models.Program
	err := scanProgram(r.db.QueryRow(
		ctx,
		query,
		id,
		input.Name,
		input.Description,
		input.Price,
		input.EstimatedDuration,
		input.VideoURL,
		input.ImageURL,
		input.Active,
	), &program)
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *ProgramRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const moduleColumns = `id, program_id, name, description, estimated_duration, sort_order, created_at, updated_at`

func scanModule(row interface{ Scan(dest ...any) error }, m *models.Module) error {
	return row.Scan(&m.ID, &m.ProgramID, &m.Name, &m.Description, &m.EstimatedDuration, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
}

func (r *ProgramRepository) CreateModule(ctx context.Context, input CreateModuleInput) (*models.Module, error) {
	query := `
		INSERT INTO modules (program_id, name, description, estimated_duration, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + moduleColumns
	var module models.Module
	err := scanModule(r.db.QueryRow(
		ctx, query, input.ProgramID, input.Name, input.Description, input.EstimatedDuration, input.SortOrder,
	), &module)
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *ProgramRepository) GetModuleByID(ctx context.Context, id int64) (*models.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE id = $1`
	var module models.Module
	if err := scanModule(r.db.QueryRow(ctx, query, id), &module); err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *ProgramRepository) ListModulesByProgram(ctx context.Context, programID int64) ([]models.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE program_id = $1 ORDER BY sort_order ASC, id ASC`
	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := make([]models.Module, 0)
	for rows.Next() {
		var module models.Module
		if err := scanModule(rows, &module); err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return modules, nil
}

func (r *ProgramRepository) UpdateModule(
	ctx context.Context,
	id int64,
	name string,
	description *string,
	estimatedDuration int,
	sortOrder int,
) (*models.Module, error) {
	query := `
		UPDATE modules
		SET name = $2, description = $3, estimated_duration = $4, sort_order = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + moduleColumns
	var module models.Module
	if err := scanModule(r.db.QueryRow(ctx, query, id, name, description, estimatedDuration, sortOrder), &module); err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *ProgramRepository) DeleteModule(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const topicColumns = `id, module_id, name, description, estimated_duration, sort_order, created_at, updated_at`

func scanTopic(row interface{ Scan(dest ...any) error }, t *models.Topic) error {
	return row.Scan(&t.ID, &t.ModuleID, &t.Name, &t.Description, &t.EstimatedDuration, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt)
}

func (r *ProgramRepository) CreateTopic(ctx context.Context, input CreateTopicInput) (*models.Topic, error) {
	query := `
		INSERT INTO topics (module_id, name, description, estimated_duration, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + topicColumns
	var topic models.Topic
	err := scanTopic(r.db.QueryRow(
		ctx, query, input.ModuleID, input.Name, input.Description, input.EstimatedDuration, input.SortOrder,
	), &topic)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *ProgramRepository) GetTopicByID(ctx context.Context, id int64) (*models.Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics WHERE id = $1`
	var topic models.Topic
	if err := scanTopic(r.db.QueryRow(ctx, query, id), &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *ProgramRepository) ListTopicsByModule(ctx context.Context, moduleID int64) ([]models.Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics WHERE module_id = $1 ORDER BY sort_order ASC, id ASC`
	rows, err := r.db.Query(ctx, query, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := make([]models.Topic, 0)
	for rows.Next() {
		var topic models.Topic
		if err := scanTopic(rows, &topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topics, nil
}

func (r *ProgramRepository) ListTopicsByProgram(ctx context.Context, programID int64) ([]models.Topic, error) {
	query := `
		SELECT t.id, t.module_id, t.name, t.description, t.estimated_duration, t.sort_order, t.created_at, t.updated_at
		FROM topics t
		JOIN modules m ON m.id = t.module_id
		WHERE m.program_id = $1
		ORDER BY m.sort_order ASC, t.sort_order ASC, t.id ASC
	`
	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := make([]models.Topic, 0)
	for rows.Next() {
		var topic models.Topic
		if err := scanTopic(rows, &topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topics, nil
}

func (r *ProgramRepository) UpdateTopic(
	ctx context.Context,
	id int64,
	name string,
	description *string,
	estimatedDuration int,
	sortOrder int,
) (*models.Topic, error) {
	query := `
		UPDATE topics
		SET name = $2, description = $3, estimated_duration = $4, sort_order = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + topicColumns
	var topic models.Topic
	if err := scanTopic(r.db.QueryRow(ctx, query, id, name, description, estimatedDuration, sortOrder), &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *ProgramRepository) DeleteTopic(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
