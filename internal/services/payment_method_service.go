package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/payments"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
	"go.uber.org/zap"
)

type PaymentMethodService struct {
	db         *pgxpool.Pool
	methodRepo *repository.PaymentMethodRepository
	userRepo   *repository.UserRepository
	card       payments.CardGateway
	logger     *zap.Logger
}

func NewPaymentMethodService(
	db *pgxpool.Pool,
	methodRepo *repository.PaymentMethodRepository,
	userRepo *repository.UserRepository,
	card payments.CardGateway,
	logger *zap.Logger,
) *PaymentMethodService {
	return &PaymentMethodService{
		db:         db,
		methodRepo: methodRepo,
		userRepo:   userRepo,
		card:       card,
		logger:     logger,
	}
}

type RegisterCardInput struct {
	PaymentMethodToken string
	MakeDefault        bool
}

// RegisterCard attaches a tokenized card to the user's processor customer,
// creating the customer on first use, and stores only the token plus display
// fields. Raw card numbers never reach this service.
func (s *PaymentMethodService) RegisterCard(
	ctx context.Context,
	userID int64,
	input RegisterCardInput,
) (*models.PaymentMethod, error) {
	if s.card == nil {
		return nil, ErrProcessorUnavailable
	}
	if strings.TrimSpace(input.PaymentMethodToken) == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}
	info, customerID, err := s.card.RegisterCard(ctx, customerID, user.Email, user.FullName(), input.PaymentMethodToken)
	if err != nil {
		s.logger.Warn("card registration failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, ErrPaymentFailed
	}

	if user.StripeCustomerID == nil {
		if err := s.userRepo.SetStripeCustomerID(ctx, userID, customerID); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMethodRepo := repository.NewPaymentMethodRepository(tx)

	existing, err := txMethodRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	makeDefault := input.MakeDefault || len(existing) == 0
	if makeDefault {
		if err := txMethodRepo.ClearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	method, err := txMethodRepo.Create(ctx, repository.CreatePaymentMethodInput{
		UserID:    userID,
		Processor: models.ProcessorStripe,
		Token:     input.PaymentMethodToken,
		Brand:     info.Brand,
		Last4:     info.Last4,
		ExpMonth:  info.ExpMonth,
		ExpYear:   info.ExpYear,
		IsDefault: makeDefault,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *PaymentMethodService) List(ctx context.Context, userID int64) ([]models.PaymentMethod, error) {
	return s.methodRepo.ListByUserID(ctx, userID)
}

// SetDefault marks one of the user's stored cards as the default, clearing
// the previous default in the same transaction.
func (s *PaymentMethodService) SetDefault(ctx context.Context, userID, methodID int64) (*models.PaymentMethod, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMethodRepo := repository.NewPaymentMethodRepository(tx)

	method, err := txMethodRepo.GetByID(ctx, methodID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if method.UserID != userID {
		return nil, ErrForbidden
	}

	if err := txMethodRepo.ClearDefault(ctx, userID); err != nil {
		return nil, err
	}
	updated, err := txMethodRepo.SetDefault(ctx, methodID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PaymentMethodService) Delete(ctx context.Context, userID, methodID int64) error {
	method, err := s.methodRepo.GetByID(ctx, methodID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if method.UserID != userID {
		return ErrForbidden
	}

	deleted, err := s.methodRepo.Delete(ctx, methodID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
