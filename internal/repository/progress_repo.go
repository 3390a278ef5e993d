package repository

import (
	"context"

	"github.com/juazsh/ata-portal-sub001/internal/models"
)

type ProgressRepository struct {
	db DBTX
}

func NewProgressRepository(db DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = `id, student_id, topic_id, completed, completed_at, created_at, updated_at`

func scanProgress(row interface{ Scan(dest ...any) error }, p *models.TopicProgress) error {
	return row.Scan(&p.ID, &p.StudentID, &p.TopicID, &p.Completed, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
}

// SetCompleted upserts the per-student completion flag for a topic.
func (r *ProgressRepository) SetCompleted(
	ctx context.Context,
	studentID, topicID int64,
	completed bool,
) (*models.TopicProgress, error) {
	query := `
		INSERT INTO topic_progress (student_id, topic_id, completed, completed_at)
		VALUES ($1, $2, $3, CASE WHEN $3 THEN NOW() ELSE NULL END)
		ON CONFLICT (student_id, topic_id) DO UPDATE
		SET completed = EXCLUDED.completed,
		    completed_at = CASE WHEN EXCLUDED.completed THEN NOW() ELSE NULL END,
		    updated_at = NOW()
		RETURNING ` + progressColumns
	var progress models.TopicProgress
	if err := scanProgress(r.db.QueryRow(ctx, query, studentID, topicID, completed), &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.TopicProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM topic_progress WHERE student_id = $1 ORDER BY topic_id ASC`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.TopicProgress, 0)
	for rows.Next() {
		var progress models.TopicProgress
		if err := scanProgress(rows, &progress); err != nil {
			return nil, err
		}
		entries = append(entries, progress)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// SummarizeByStudent aggregates completion per program across every program
// the student is actively enrolled in.
func (r *ProgressRepository) SummarizeByStudent(ctx context.Context, studentID int64) ([]models.ProgramProgress, error) {
	query := `
		SELECT p.id,
		       p.name,
		       COUNT(t.id) AS total_topics,
		       COUNT(tp.id) FILTER (WHERE tp.completed) AS completed_topics
		FROM enrollments e
		JOIN programs p ON p.id = e.program_id
		JOIN modules m ON m.program_id = p.id
		JOIN topics t ON t.module_id = m.id
		LEFT JOIN topic_progress tp ON tp.topic_id = t.id AND tp.student_id = e.student_id
		WHERE e.student_id = $1 AND e.status = 'paid'
		GROUP BY p.id, p.name
		ORDER BY p.name ASC
	`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ProgramProgress, 0)
	for rows.Next() {
		var summary models.ProgramProgress
		if err := rows.Scan(&summary.ProgramID, &summary.ProgramName, &summary.TotalTopics, &summary.CompletedTopics); err != nil {
			return nil, err
		}
		if summary.TotalTopics > 0 {
			summary.Percent = float64(summary.CompletedTopics) / float64(summary.TotalTopics) * 100
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}
