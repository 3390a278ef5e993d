package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
	"github.com/juazsh/ata-portal-sub001/pkg/utils"
	"go.uber.org/zap"
)

type UserService struct {
	userRepo *repository.UserRepository
	storage  StorageService
	logger   *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, storage StorageService, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, storage: storage, logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*models.User, error) {
	if input.FirstName != nil && strings.TrimSpace(*input.FirstName) == "" {
		return nil, ErrInvalidInput
	}
	if input.LastName != nil && strings.TrimSpace(*input.LastName) == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, input.FirstName, input.LastName, nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UploadAvatar stores the image and swaps the profile's avatar URL, removing
// the previous object best-effort.
func (s *UserService) UploadAvatar(ctx context.Context, userID int64, file multipart.File, filename string) (*models.User, error) {
	if s.storage == nil {
		return nil, ErrProcessorUnavailable
	}

	current, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = strings.ToLower(filename[i:])
	}
	objectName := fmt.Sprintf("%d-%s%s", userID, uuid.NewString(), ext)
	avatarURL, err := s.storage.UploadFile(ctx, file, objectName, "avatars")
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, nil, nil, &avatarURL)
	if err != nil {
		return nil, err
	}

	if current.AvatarURL != nil && *current.AvatarURL != avatarURL {
		if err := s.storage.DeleteFile(ctx, *current.AvatarURL); err != nil {
			s.logger.Warn("stale avatar delete failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return user, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, userID int64) error {
	return s.userRepo.SetEmailVerified(ctx, userID)
}

type CreateStudentInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CreateStudent registers a child account under the calling parent.
func (s *UserService) CreateStudent(ctx context.Context, parentID int64, input CreateStudentInput) (*models.User, error) {
	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(input.Email))
	if err != nil {
		return nil, ErrInvalidInput
	}
	if len(input.Password) < 8 {
		return nil, ErrInvalidInput
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrInvalidInput
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	student := &models.User{
		Email:        strings.ToLower(parsedEmail.Address),
		PasswordHash: hashed,
		Role:         models.RoleStudent,
		FirstName:    &firstName,
		LastName:     &lastName,
		ParentID:     &parentID,
	}
	if err := s.userRepo.CreateUser(ctx, student); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, err
	}
	return student, nil
}

// ListStudents returns the caller's children for parents and the full roster
// for staff.
func (s *UserService) ListStudents(ctx context.Context, actorID int64, role string) ([]models.User, error) {
	switch {
	case role == models.RoleParent:
		return s.userRepo.ListStudentsByParent(ctx, actorID)
	case models.IsStaff(role) || role == models.RoleTeacher:
		return s.userRepo.ListAllStudents(ctx)
	}
	return nil, ErrForbidden
}
