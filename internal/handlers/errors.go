package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/juazsh/ata-portal-sub001/internal/services"
)

// mapServiceError translates service sentinels to HTTP responses. notFound
// lets each handler name the missing resource.
func mapServiceError(c *fiber.Ctx, err error, notFound string) error {
	var pgErr *pgconn.PgError

	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrKindMismatch),
		errors.Is(err, services.ErrDiscountNotUsable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrScheduleFull):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Schedule has no available seats"})
	case errors.Is(err, services.ErrScheduleHasEnrollments):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Schedule has enrolled students"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPaymentFailed):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "Payment failed"})
	case errors.Is(err, services.ErrProcessorUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payment processor is not configured"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound})
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Resource already exists"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process request"})
	}
}
