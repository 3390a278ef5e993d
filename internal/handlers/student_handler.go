package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

type studentAccountService interface {
	CreateStudent(ctx context.Context, parentID int64, input services.CreateStudentInput) (*models.User, error)
	ListStudents(ctx context.Context, actorID int64, role string) ([]models.User, error)
}

type studentProgressService interface {
	SetTopicCompleted(ctx context.Context, actorID int64, role string, studentID, topicID int64, completed bool) (*models.TopicProgress, error)
	StudentProgress(ctx context.Context, actorID int64, role string, studentID int64) ([]models.ProgramProgress, []models.TopicProgress, error)
}

type StudentHandler struct {
	accounts studentAccountService
	progress studentProgressService
}

func NewStudentHandler(accounts *services.UserService, progress *services.ProgressService) *StudentHandler {
	return &StudentHandler{accounts: accounts, progress: progress}
}

type createStudentRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleParent {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	parentID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	student, err := h.accounts.CreateStudent(c.Context(), parentID, services.CreateStudentInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return mapServiceError(c, err, "Parent not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"student": student})
}

func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	students, err := h.accounts.ListStudents(c.Context(), actorID, role)
	if err != nil {
		return mapServiceError(c, err, "Students not found")
	}
	return c.JSON(fiber.Map{"students": students})
}

func (h *StudentHandler) GetProgress(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	studentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || studentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	summaries, entries, err := h.progress.StudentProgress(c.Context(), actorID, role, studentID)
	if err != nil {
		return mapServiceError(c, err, "Student not found")
	}
	return c.JSON(fiber.Map{"programs": summaries, "topics": entries})
}

type topicProgressRequest struct {
	TopicID   int64 `json:"topic_id"`
	Completed bool  `json:"completed"`
}

func (h *StudentHandler) SetTopicProgress(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	studentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || studentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var req topicProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.TopicID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid topic id"})
	}

	entry, err := h.progress.SetTopicCompleted(c.Context(), actorID, role, studentID, req.TopicID, req.Completed)
	if err != nil {
		return mapServiceError(c, err, "Topic not found")
	}
	return c.JSON(fiber.Map{"progress": entry})
}
