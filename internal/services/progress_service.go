package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
)

type ProgressService struct {
	progressRepo *repository.ProgressRepository
	programRepo  *repository.ProgramRepository
	userRepo     *repository.UserRepository
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	programRepo *repository.ProgramRepository,
	userRepo *repository.UserRepository,
) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		programRepo:  programRepo,
		userRepo:     userRepo,
	}
}

// SetTopicCompleted records or clears a student's completion of a topic.
// Teachers and admins mark for any student; parents cannot write progress.
func (s *ProgressService) SetTopicCompleted(
	ctx context.Context,
	actorID int64,
	role string,
	studentID, topicID int64,
	completed bool,
) (*models.TopicProgress, error) {
	switch role {
	case models.RoleOwner, models.RoleAdmin, models.RoleTeacher:
	case models.RoleStudent:
		if actorID != studentID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	if _, err := s.programRepo.GetTopicByID(ctx, topicID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.checkStudent(ctx, studentID); err != nil {
		return nil, err
	}

	return s.progressRepo.SetCompleted(ctx, studentID, topicID, completed)
}

// StudentProgress returns the per-program completion summary alongside the
// raw topic entries.
func (s *ProgressService) StudentProgress(
	ctx context.Context,
	actorID int64,
	role string,
	studentID int64,
) ([]models.ProgramProgress, []models.TopicProgress, error) {
	switch role {
	case models.RoleOwner, models.RoleAdmin, models.RoleTeacher:
	case models.RoleStudent:
		if actorID != studentID {
			return nil, nil, ErrForbidden
		}
	case models.RoleParent:
		student, err := s.userRepo.GetByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, ErrNotFound
			}
			return nil, nil, err
		}
		if student.ParentID == nil || *student.ParentID != actorID {
			return nil, nil, ErrForbidden
		}
	default:
		return nil, nil, ErrForbidden
	}

	summaries, err := s.progressRepo.SummarizeByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.progressRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	return summaries, entries, nil
}

func (s *ProgressService) checkStudent(ctx context.Context, studentID int64) error {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if student.Role != models.RoleStudent {
		return ErrInvalidInput
	}
	return nil
}
