package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/payments"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
	"go.uber.org/zap"
)

// SeatNotifier publishes schedule availability changes to connected clients.
type SeatNotifier interface {
	PublishSeatUpdate(scheduleID int64, available, availableDemo int)
}

type EnrollmentService struct {
	db             *pgxpool.Pool
	enrollmentRepo *repository.EnrollmentRepository
	paymentRepo    *repository.PaymentRepository
	scheduleRepo   *repository.ScheduleRepository
	offeringRepo   *repository.OfferingRepository
	programRepo    *repository.ProgramRepository
	userRepo       *repository.UserRepository
	methodRepo     *repository.PaymentMethodRepository
	card           payments.CardGateway
	redirect       payments.RedirectGateway
	notifier       SeatNotifier
	logger         *zap.Logger
	now            func() time.Time
}

func NewEnrollmentService(
	db *pgxpool.Pool,
	enrollmentRepo *repository.EnrollmentRepository,
	paymentRepo *repository.PaymentRepository,
	scheduleRepo *repository.ScheduleRepository,
	offeringRepo *repository.OfferingRepository,
	programRepo *repository.ProgramRepository,
	userRepo *repository.UserRepository,
	methodRepo *repository.PaymentMethodRepository,
	card payments.CardGateway,
	redirect payments.RedirectGateway,
	notifier SeatNotifier,
	logger *zap.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		db:             db,
		enrollmentRepo: enrollmentRepo,
		paymentRepo:    paymentRepo,
		scheduleRepo:   scheduleRepo,
		offeringRepo:   offeringRepo,
		programRepo:    programRepo,
		userRepo:       userRepo,
		methodRepo:     methodRepo,
		card:           card,
		redirect:       redirect,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

type EnrollInput struct {
	StudentID      int64
	ScheduleID     int64
	Processor      string
	DiscountCode   string
	AutoPayEnabled bool
}

// Enroll creates a pending_payment enrollment and takes a seat on the
// schedule, all in one transaction guarded by an advisory lock on the
// schedule. Payment happens afterward through ProcessPayment; a failed charge
// never leaves an untracked seat.
func (s *EnrollmentService) Enroll(
	ctx context.Context,
	parentID int64,
	input EnrollInput,
) (*models.EnrollmentDetail, error) {
	if input.StudentID <= 0 || input.ScheduleID <= 0 {
		return nil, ErrInvalidInput
	}
	if input.Processor != models.ProcessorStripe && input.Processor != models.ProcessorPayPal {
		return nil, ErrInvalidInput
	}

	student, err := s.userRepo.GetByID(ctx, input.StudentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, ErrInvalidInput
	}
	if student.ParentID == nil || *student.ParentID != parentID {
		return nil, ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)
	txScheduleRepo := repository.NewScheduleRepository(tx)
	txOfferingRepo := repository.NewOfferingRepository(tx)
	txProgramRepo := repository.NewProgramRepository(tx)
	txDiscountRepo := repository.NewDiscountCodeRepository(tx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.ScheduleID); err != nil {
		return nil, err
	}

	schedule, err := txScheduleRepo.GetByIDForUpdate(ctx, input.ScheduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	exists, err := txEnrollmentRepo.HasActiveForStudentSchedule(ctx, input.StudentID, input.ScheduleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	var (
		basePrice        float64
		monthlyAmount    *float64
		subscriptionID   *string
		nextPaymentDueAt *time.Time
	)
	switch {
	case schedule.ProgramID != nil:
		program, err := txProgramRepo.GetByID(ctx, *schedule.ProgramID)
		if err != nil {
			return nil, err
		}
		basePrice = program.Price
	case schedule.PlanID != nil:
		plan, err := txOfferingRepo.GetPlanByID(ctx, *schedule.PlanID)
		if err != nil {
			return nil, err
		}
		basePrice = plan.MonthlyAmount
		monthlyAmount = &plan.MonthlyAmount
		subID := uuid.NewString()
		subscriptionID = &subID
		nextDue := s.now().AddDate(0, 1, 0)
		nextPaymentDueAt = &nextDue
	default:
		return nil, ErrInvalidInput
	}

	discountPercent := 0
	var discountCodeID *int64
	if input.DiscountCode != "" {
		discount, err := txDiscountRepo.GetByCodeForUpdate(ctx, input.DiscountCode)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrDiscountNotUsable
			}
			return nil, err
		}
		if !discount.Usable(s.now()) {
			return nil, ErrDiscountNotUsable
		}
		if discount.LocationID != nil && *discount.LocationID != schedule.LocationID {
			return nil, ErrDiscountNotUsable
		}
		redeemed, err := txDiscountRepo.IncrementUses(ctx, discount.ID)
		if err != nil {
			return nil, err
		}
		if !redeemed {
			return nil, ErrDiscountNotUsable
		}
		discountPercent = discount.Percent
		discountCodeID = &discount.ID
	}

	breakdown := CalculatePrice(PricingInput{
		BasePrice:       basePrice,
		DiscountPercent: discountPercent,
		AutoPayEnabled:  input.AutoPayEnabled,
	})

	reserved, err := txScheduleRepo.ReserveSeat(ctx, input.ScheduleID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, ErrScheduleFull
	}

	enrollment, err := txEnrollmentRepo.Create(ctx, repository.CreateEnrollmentInput{
		StudentID:        input.StudentID,
		ParentID:         parentID,
		ScheduleID:       input.ScheduleID,
		ProgramID:        schedule.ProgramID,
		PlanID:           schedule.PlanID,
		Processor:        input.Processor,
		BaseAmount:       breakdown.Base,
		DiscountAmount:   breakdown.DiscountAmount,
		AdminFee:         breakdown.AdminFee,
		TaxAmount:        breakdown.Tax,
		TotalAmount:      breakdown.Total,
		AutoPayEnabled:   input.AutoPayEnabled,
		DiscountCodeID:   discountCodeID,
		SubscriptionID:   subscriptionID,
		MonthlyAmount:    monthlyAmount,
		NextPaymentDueAt: nextPaymentDueAt,
	})
	if err != nil {
		return nil, err
	}

	payment, err := txPaymentRepo.Create(ctx, repository.CreatePaymentInput{
		EnrollmentID: enrollment.ID,
		Amount:       breakdown.Total,
		Status:       models.PaymentStatusPending,
		Processor:    input.Processor,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publishSeatUpdate(ctx, input.ScheduleID)

	return &models.EnrollmentDetail{
		Enrollment: *enrollment,
		Payments:   []models.PaymentRecord{*payment},
	}, nil
}

// ProcessPaymentInput selects the card to charge. A zero PaymentMethodID
// means the parent's default card.
type ProcessPaymentInput struct {
	PaymentMethodID int64
}

// ProcessPaymentResult carries the approval URL for redirect processors; for
// card payments it is empty and the enrollment lands in a terminal payment
// state immediately.
type ProcessPaymentResult struct {
	Enrollment  *models.EnrollmentDetail
	ApprovalURL string
}

// ProcessPayment drives an enrollment's payment. Retry after a failure hits
// the same enrollment id; replaying against a paid enrollment is a no-op that
// returns the current state. The row lock taken here serializes concurrent
// submissions of the same enrollment.
func (s *EnrollmentService) ProcessPayment(
	ctx context.Context,
	actorID int64,
	role string,
	enrollmentID int64,
	input ProcessPaymentInput,
) (*ProcessPaymentResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)

	enrollment, err := txEnrollmentRepo.GetByIDForUpdate(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !canAccessEnrollment(role, actorID, enrollment) {
		return nil, ErrForbidden
	}
	if enrollment.Status == models.EnrollmentStatusPaid {
		detail, err := s.Get(ctx, actorID, role, enrollmentID)
		if err != nil {
			return nil, err
		}
		return &ProcessPaymentResult{Enrollment: detail}, nil
	}
	if enrollment.Status != models.EnrollmentStatusPendingPayment &&
		enrollment.Status != models.EnrollmentStatusPaymentFailed {
		return nil, ErrInvalidStateTransition
	}

	payment, err := txPaymentRepo.GetLatestByEnrollmentIDForUpdate(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	switch enrollment.Processor {
	case models.ProcessorStripe:
		return s.processCardPayment(ctx, tx, txEnrollmentRepo, txPaymentRepo, enrollment, payment, actorID, role, input)
	case models.ProcessorPayPal:
		return s.processRedirectPayment(ctx, tx, txPaymentRepo, enrollment, payment)
	default:
		return nil, ErrInvalidInput
	}
}

func (s *EnrollmentService) processCardPayment(
	ctx context.Context,
	tx pgx.Tx,
	txEnrollmentRepo *repository.EnrollmentRepository,
	txPaymentRepo *repository.PaymentRepository,
	enrollment *models.Enrollment,
	payment *models.PaymentRecord,
	actorID int64,
	role string,
	input ProcessPaymentInput,
) (*ProcessPaymentResult, error) {
	if s.card == nil {
		return nil, ErrProcessorUnavailable
	}

	// Without an explicit payment_method_id the charge falls back to the
	// parent's default card.
	var method *models.PaymentMethod
	var err error
	if input.PaymentMethodID > 0 {
		method, err = s.methodRepo.GetByID(ctx, input.PaymentMethodID)
	} else {
		method, err = s.methodRepo.GetDefaultByUserID(ctx, enrollment.ParentID)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if input.PaymentMethodID > 0 {
				return nil, ErrNotFound
			}
			return nil, ErrInvalidInput
		}
		return nil, err
	}
	if method.UserID != enrollment.ParentID {
		return nil, ErrForbidden
	}

	parent, err := s.userRepo.GetByID(ctx, enrollment.ParentID)
	if err != nil {
		return nil, err
	}
	if parent.StripeCustomerID == nil {
		return nil, ErrInvalidStateTransition
	}

	description := fmt.Sprintf("enrollment %d", enrollment.ID)
	transactionID, chargeErr := s.card.ChargeCard(ctx, *parent.StripeCustomerID, method.Token, enrollment.TotalAmount, description)
	if chargeErr != nil {
		if !errors.Is(chargeErr, payments.ErrCardDeclined) {
			return nil, chargeErr
		}

		s.logger.Warn("card charge declined",
			zap.Int64("enrollment_id", enrollment.ID),
			zap.Error(chargeErr),
		)
		if _, err := txPaymentRepo.UpdateStatus(ctx, payment.ID, models.PaymentStatusFailed, nil); err != nil {
			return nil, err
		}
		if _, err := txEnrollmentRepo.UpdateStatusIfCurrent(ctx, enrollment.ID, enrollment.Status, models.EnrollmentStatusPaymentFailed); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return nil, ErrPaymentFailed
	}

	if _, err := txPaymentRepo.UpdateStatus(ctx, payment.ID, models.PaymentStatusPaid, &transactionID); err != nil {
		return nil, err
	}
	if _, err := txEnrollmentRepo.UpdateStatusIfCurrent(ctx, enrollment.ID, enrollment.Status, models.EnrollmentStatusPaid); err != nil {
		return nil, err
	}
	if enrollment.IsSubscription() {
		if err := txEnrollmentRepo.SetNextPaymentDue(ctx, enrollment.ID, s.now().AddDate(0, 1, 0)); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	detail, err := s.Get(ctx, actorID, role, enrollment.ID)
	if err != nil {
		return nil, err
	}
	return &ProcessPaymentResult{Enrollment: detail}, nil
}

func (s *EnrollmentService) processRedirectPayment(
	ctx context.Context,
	tx pgx.Tx,
	txPaymentRepo *repository.PaymentRepository,
	enrollment *models.Enrollment,
	payment *models.PaymentRecord,
) (*ProcessPaymentResult, error) {
	if s.redirect == nil {
		return nil, ErrProcessorUnavailable
	}

	description := fmt.Sprintf("enrollment %d", enrollment.ID)
	orderID, approvalURL, err := s.redirect.CreateOrder(ctx, enrollment.TotalAmount, description)
	if err != nil {
		return nil, err
	}

	// The enrollment stays pending_payment until the approved order is
	// captured; the order id rides on the payment record.
	if _, err := txPaymentRepo.UpdateStatus(ctx, payment.ID, models.PaymentStatusPending, &orderID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ProcessPaymentResult{ApprovalURL: approvalURL}, nil
}

// CapturePayment finishes a redirect-processor payment after the user
// approved the order.
func (s *EnrollmentService) CapturePayment(
	ctx context.Context,
	actorID int64,
	role string,
	enrollmentID int64,
	orderID string,
) (*models.EnrollmentDetail, error) {
	if s.redirect == nil {
		return nil, ErrProcessorUnavailable
	}
	if orderID == "" {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)

	enrollment, err := txEnrollmentRepo.GetByIDForUpdate(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !canAccessEnrollment(role, actorID, enrollment) {
		return nil, ErrForbidden
	}
	if enrollment.Status == models.EnrollmentStatusPaid {
		return s.Get(ctx, actorID, role, enrollmentID)
	}
	if enrollment.Status != models.EnrollmentStatusPendingPayment {
		return nil, ErrInvalidStateTransition
	}

	payment, err := txPaymentRepo.GetLatestByEnrollmentIDForUpdate(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if payment.TransactionID == nil || *payment.TransactionID != orderID {
		return nil, ErrInvalidInput
	}

	transactionID, captureErr := s.redirect.CaptureOrder(ctx, orderID)
	if captureErr != nil {
		if !errors.Is(captureErr, payments.ErrCardDeclined) {
			return nil, captureErr
		}

		s.logger.Warn("order capture failed",
			zap.Int64("enrollment_id", enrollment.ID),
			zap.String("order_id", orderID),
			zap.Error(captureErr),
		)
		if _, err := txPaymentRepo.UpdateStatus(ctx, payment.ID, models.PaymentStatusFailed, nil); err != nil {
			return nil, err
		}
		if _, err := txEnrollmentRepo.UpdateStatusIfCurrent(ctx, enrollment.ID, enrollment.Status, models.EnrollmentStatusPaymentFailed); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return nil, ErrPaymentFailed
	}

	if _, err := txPaymentRepo.UpdateStatus(ctx, payment.ID, models.PaymentStatusPaid, &transactionID); err != nil {
		return nil, err
	}
	if _, err := txEnrollmentRepo.UpdateStatusIfCurrent(ctx, enrollment.ID, enrollment.Status, models.EnrollmentStatusPaid); err != nil {
		return nil, err
	}
	if enrollment.IsSubscription() {
		if err := txEnrollmentRepo.SetNextPaymentDue(ctx, enrollment.ID, s.now().AddDate(0, 1, 0)); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.Get(ctx, actorID, role, enrollmentID)
}

// Cancel releases the enrollment's seat and marks it cancelled. Already
// cancelled enrollments reject the transition.
func (s *EnrollmentService) Cancel(
	ctx context.Context,
	actorID int64,
	role string,
	enrollmentID int64,
) (*models.EnrollmentDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)
	txScheduleRepo := repository.NewScheduleRepository(tx)

	enrollment, err := txEnrollmentRepo.GetByIDForUpdate(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !canAccessEnrollment(role, actorID, enrollment) {
		return nil, ErrForbidden
	}
	if enrollment.Status == models.EnrollmentStatusCancelled {
		return nil, ErrInvalidStateTransition
	}

	if _, err := txEnrollmentRepo.UpdateStatusIfCurrent(ctx, enrollment.ID, enrollment.Status, models.EnrollmentStatusCancelled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	if err := txScheduleRepo.ReleaseSeat(ctx, enrollment.ScheduleID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publishSeatUpdate(ctx, enrollment.ScheduleID)

	return s.Get(ctx, actorID, role, enrollmentID)
}

// List returns the caller's enrollments with the latest payment attached to
// each row.
func (s *EnrollmentService) List(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.EnrollmentListFilter,
) ([]models.EnrollmentSummary, error) {
	switch role {
	case models.RoleParent:
		filter.ParentID = actorID
	case models.RoleStudent:
		filter.StudentID = actorID
	case models.RoleOwner, models.RoleAdmin:
	default:
		return nil, ErrForbidden
	}

	enrollments, err := s.enrollmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(enrollments))
	for _, enrollment := range enrollments {
		ids = append(ids, enrollment.ID)
	}
	latest, err := s.paymentRepo.ListByEnrollmentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.EnrollmentSummary, 0, len(enrollments))
	for _, enrollment := range enrollments {
		summary := models.EnrollmentSummary{Enrollment: enrollment}
		if payment, ok := latest[enrollment.ID]; ok {
			last := payment
			summary.LastPayment = &last
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *EnrollmentService) Get(
	ctx context.Context,
	actorID int64,
	role string,
	enrollmentID int64,
) (*models.EnrollmentDetail, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !canAccessEnrollment(role, actorID, enrollment) {
		return nil, ErrForbidden
	}

	paymentHistory, err := s.paymentRepo.ListByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	return &models.EnrollmentDetail{
		Enrollment: *enrollment,
		Payments:   paymentHistory,
	}, nil
}

func (s *EnrollmentService) ListPayments(
	ctx context.Context,
	actorID int64,
	role string,
	enrollmentID int64,
) ([]models.PaymentRecord, error) {
	detail, err := s.Get(ctx, actorID, role, enrollmentID)
	if err != nil {
		return nil, err
	}
	return detail.Payments, nil
}

func (s *EnrollmentService) publishSeatUpdate(ctx context.Context, scheduleID int64) {
	if s.notifier == nil {
		return
	}
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		s.logger.Warn("seat update lookup failed", zap.Int64("schedule_id", scheduleID), zap.Error(err))
		return
	}
	s.notifier.PublishSeatUpdate(scheduleID, schedule.AvailableCapacity, schedule.AvailableDemo)
}

func canAccessEnrollment(role string, actorID int64, enrollment *models.Enrollment) bool {
	switch role {
	case models.RoleParent:
		return enrollment.ParentID == actorID
	case models.RoleStudent:
		return enrollment.StudentID == actorID
	case models.RoleOwner, models.RoleAdmin:
		return true
	}
	return false
}
