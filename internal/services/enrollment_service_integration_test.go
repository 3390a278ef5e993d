package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/payments"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
	"go.uber.org/zap"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

type stubCardGateway struct {
	declineNext bool
	charges     int
	lastAmount  float64
}

func (s *stubCardGateway) RegisterCard(_ context.Context, customerID, _, _, _ string) (*payments.CardInfo, string, error) {
	if customerID == "" {
		customerID = "cus_test"
	}
	return &payments.CardInfo{Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030}, customerID, nil
}

func (s *stubCardGateway) ChargeCard(_ context.Context, _, _ string, amount float64, _ string) (string, error) {
	if s.declineNext {
		s.declineNext = false
		return "", payments.ErrCardDeclined
	}
	s.charges++
	s.lastAmount = amount
	return fmt.Sprintf("txn-%d", s.charges), nil
}

type stubRedirectGateway struct {
	orderID  string
	captured string
}

func (s *stubRedirectGateway) CreateOrder(_ context.Context, _ float64, _ string) (string, string, error) {
	return s.orderID, "https://paypal.example/approve/" + s.orderID, nil
}

func (s *stubRedirectGateway) CaptureOrder(_ context.Context, orderID string) (string, error) {
	s.captured = orderID
	return "cap-" + orderID, nil
}

type noopSeatNotifier struct{}

func (noopSeatNotifier) PublishSeatUpdate(int64, int, int) {}

type enrollmentFixtures struct {
	parentID   int64
	studentID  int64
	scheduleID int64
	methodID   int64
	programID  int64
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationEnrollmentService(pool *pgxpool.Pool, card payments.CardGateway, redirect payments.RedirectGateway) *EnrollmentService {
	return NewEnrollmentService(
		pool,
		repository.NewEnrollmentRepository(pool),
		repository.NewPaymentRepository(pool),
		repository.NewScheduleRepository(pool),
		repository.NewOfferingRepository(pool),
		repository.NewProgramRepository(pool),
		repository.NewUserRepository(pool),
		repository.NewPaymentMethodRepository(pool),
		card,
		redirect,
		noopSeatNotifier{},
		zap.NewNop(),
	)
}

func createEnrollmentFixtures(t *testing.T, ctx context.Context, pool *pgxpool.Pool, totalCapacity int) enrollmentFixtures {
	t.Helper()

	userRepo := repository.NewUserRepository(pool)
	tag := time.Now().UnixNano()

	parent := &models.User{
		Email:        fmt.Sprintf("enroll-test-parent-%d@example.com", tag),
		PasswordHash: "test-hash",
		Role:         models.RoleParent,
	}
	if err := userRepo.CreateUser(ctx, parent); err != nil {
		t.Fatalf("CreateUser(parent): %v", err)
	}
	if err := userRepo.SetStripeCustomerID(ctx, parent.ID, "cus_test"); err != nil {
		t.Fatalf("SetStripeCustomerID: %v", err)
	}

	student := &models.User{
		Email:        fmt.Sprintf("enroll-test-student-%d@example.com", tag),
		PasswordHash: "test-hash",
		Role:         models.RoleStudent,
		ParentID:     &parent.ID,
	}
	if err := userRepo.CreateUser(ctx, student); err != nil {
		t.Fatalf("CreateUser(student): %v", err)
	}

	location, err := repository.NewLocationRepository(pool).Create(ctx, repository.CreateLocationInput{
		Name:    fmt.Sprintf("Test Location %d", tag),
		Address: "1 Test St",
		City:    "Testville",
		State:   "TS",
		Zip:     "12345",
	})
	if err != nil {
		t.Fatalf("Create location: %v", err)
	}

	offeringRepo := repository.NewOfferingRepository(pool)
	offering, err := offeringRepo.Create(ctx, repository.CreateOfferingInput{
		Name: fmt.Sprintf("Test Offering %d", tag),
		Kind: models.OfferingKindProgram,
	})
	if err != nil {
		t.Fatalf("Create offering: %v", err)
	}

	program, err := repository.NewProgramRepository(pool).Create(ctx, repository.CreateProgramInput{
		OfferingID: offering.ID,
		Name:       "Test Program",
		Price:      100,
	})
	if err != nil {
		t.Fatalf("Create program: %v", err)
	}

	session, err := repository.NewClassSessionRepository(pool).Create(ctx, repository.CreateClassSessionInput{
		LocationID:    location.ID,
		Weekday:       "saturday",
		StartTime:     "10:00",
		EndTime:       "11:30",
		Type:          models.SessionTypeWeekend,
		TotalCapacity: totalCapacity,
		DemoCapacity:  2,
	})
	if err != nil {
		t.Fatalf("Create class session: %v", err)
	}

	schedule, err := repository.NewScheduleRepository(pool).Create(ctx, repository.CreateScheduleInput{
		Date:           time.Date(2031, 6, 7, 0, 0, 0, 0, time.UTC),
		LocationID:     location.ID,
		ClassSessionID: session.ID,
		ProgramID:      &program.ID,
		TotalCapacity:  totalCapacity,
		DemoCapacity:   2,
	})
	if err != nil {
		t.Fatalf("Create schedule: %v", err)
	}

	method, err := repository.NewPaymentMethodRepository(pool).Create(ctx, repository.CreatePaymentMethodInput{
		UserID:    parent.ID,
		Processor: models.ProcessorStripe,
		Token:     "pm_test",
		Brand:     "visa",
		Last4:     "4242",
		ExpMonth:  12,
		ExpYear:   2030,
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("Create payment method: %v", err)
	}

	t.Cleanup(func() {
		for _, stmt := range []string{
			"DELETE FROM payments WHERE enrollment_id IN (SELECT id FROM enrollments WHERE parent_id = $1)",
			"DELETE FROM enrollments WHERE parent_id = $1",
		} {
			if _, err := pool.Exec(ctx, stmt, parent.ID); err != nil {
				t.Errorf("cleanup enrollments: %v", err)
			}
		}
		if _, err := pool.Exec(ctx, "DELETE FROM payment_methods WHERE user_id = $1", parent.ID); err != nil {
			t.Errorf("cleanup payment methods: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM schedules WHERE id = $1", schedule.ID); err != nil {
			t.Errorf("cleanup schedule: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM class_sessions WHERE id = $1", session.ID); err != nil {
			t.Errorf("cleanup class session: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM offerings WHERE id = $1", offering.ID); err != nil {
			t.Errorf("cleanup offering: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM locations WHERE id = $1", location.ID); err != nil {
			t.Errorf("cleanup location: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id IN ($1, $2)", student.ID, parent.ID); err != nil {
			t.Errorf("cleanup users: %v", err)
		}
	})

	return enrollmentFixtures{
		parentID:   parent.ID,
		studentID:  student.ID,
		scheduleID: schedule.ID,
		methodID:   method.ID,
		programID:  program.ID,
	}
}

func TestEnrollmentServiceEnrollAndCardPayFlow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	card := &stubCardGateway{}
	service := newIntegrationEnrollmentService(pool, card, nil)
	fx := createEnrollmentFixtures(t, ctx, pool, 5)

	detail, err := service.Enroll(ctx, fx.parentID, EnrollInput{
		StudentID:  fx.studentID,
		ScheduleID: fx.scheduleID,
		Processor:  models.ProcessorStripe,
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if detail.Status != models.EnrollmentStatusPendingPayment {
		t.Fatalf("expected pending_payment, got %q", detail.Status)
	}
	if detail.TotalAmount != 112.35 {
		t.Fatalf("expected total 112.35 for a 100 base, got %.2f", detail.TotalAmount)
	}

	schedule, err := repository.NewScheduleRepository(pool).GetByID(ctx, fx.scheduleID)
	if err != nil {
		t.Fatalf("GetByID schedule: %v", err)
	}
	if schedule.AvailableCapacity != 4 {
		t.Fatalf("expected 4 seats left after enroll, got %d", schedule.AvailableCapacity)
	}

	// No payment_method_id falls back to the parent's default card.
	result, err := service.ProcessPayment(ctx, fx.parentID, models.RoleParent, detail.ID, ProcessPaymentInput{})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if result.Enrollment.Status != models.EnrollmentStatusPaid {
		t.Fatalf("expected paid, got %q", result.Enrollment.Status)
	}
	if card.lastAmount != 112.35 {
		t.Fatalf("expected charge of 112.35, got %.2f", card.lastAmount)
	}

	summaries, err := service.List(ctx, fx.parentID, models.RoleParent, repository.EnrollmentListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var summary *models.EnrollmentSummary
	for i := range summaries {
		if summaries[i].ID == detail.ID {
			summary = &summaries[i]
		}
	}
	if summary == nil {
		t.Fatalf("enrollment %d missing from list", detail.ID)
	}
	if summary.LastPayment == nil {
		t.Fatal("expected the latest payment on the list row")
	}
	if summary.LastPayment.Status != models.PaymentStatusPaid || summary.LastPayment.Amount != 112.35 {
		t.Fatalf("unexpected last payment: %+v", summary.LastPayment)
	}

	// Replaying a paid enrollment is a no-op.
	replay, err := service.ProcessPayment(ctx, fx.parentID, models.RoleParent, detail.ID, ProcessPaymentInput{
		PaymentMethodID: fx.methodID,
	})
	if err != nil {
		t.Fatalf("ProcessPayment replay: %v", err)
	}
	if replay.Enrollment.Status != models.EnrollmentStatusPaid {
		t.Fatalf("expected paid on replay, got %q", replay.Enrollment.Status)
	}
	if card.charges != 1 {
		t.Fatalf("expected exactly one charge, got %d", card.charges)
	}

	cancelled, err := service.Cancel(ctx, fx.parentID, models.RoleParent, detail.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.EnrollmentStatusCancelled {
		t.Fatalf("expected cancelled, got %q", cancelled.Status)
	}

	schedule, err = repository.NewScheduleRepository(pool).GetByID(ctx, fx.scheduleID)
	if err != nil {
		t.Fatalf("GetByID schedule after cancel: %v", err)
	}
	if schedule.AvailableCapacity != 5 {
		t.Fatalf("expected seat released after cancel, got %d available", schedule.AvailableCapacity)
	}
}

func TestEnrollmentServiceRetriesFailedPaymentOnSameEnrollment(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	card := &stubCardGateway{declineNext: true}
	service := newIntegrationEnrollmentService(pool, card, nil)
	fx := createEnrollmentFixtures(t, ctx, pool, 5)

	detail, err := service.Enroll(ctx, fx.parentID, EnrollInput{
		StudentID:  fx.studentID,
		ScheduleID: fx.scheduleID,
		Processor:  models.ProcessorStripe,
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if _, err := service.ProcessPayment(ctx, fx.parentID, models.RoleParent, detail.ID, ProcessPaymentInput{
		PaymentMethodID: fx.methodID,
	}); err != ErrPaymentFailed {
		t.Fatalf("expected ErrPaymentFailed, got %v", err)
	}

	failed, err := service.Get(ctx, fx.parentID, models.RoleParent, detail.ID)
	if err != nil {
		t.Fatalf("Get after decline: %v", err)
	}
	if failed.Status != models.EnrollmentStatusPaymentFailed {
		t.Fatalf("expected payment_failed, got %q", failed.Status)
	}

	retry, err := service.ProcessPayment(ctx, fx.parentID, models.RoleParent, detail.ID, ProcessPaymentInput{
		PaymentMethodID: fx.methodID,
	})
	if err != nil {
		t.Fatalf("ProcessPayment retry: %v", err)
	}
	if retry.Enrollment.ID != detail.ID {
		t.Fatalf("expected retry on enrollment %d, got %d", detail.ID, retry.Enrollment.ID)
	}
	if retry.Enrollment.Status != models.EnrollmentStatusPaid {
		t.Fatalf("expected paid after retry, got %q", retry.Enrollment.Status)
	}
}

func TestEnrollmentServiceRejectsFullSchedule(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationEnrollmentService(pool, &stubCardGateway{}, nil)
	fx := createEnrollmentFixtures(t, ctx, pool, 1)

	if _, err := service.Enroll(ctx, fx.parentID, EnrollInput{
		StudentID:  fx.studentID,
		ScheduleID: fx.scheduleID,
		Processor:  models.ProcessorStripe,
	}); err != nil {
		t.Fatalf("first Enroll: %v", err)
	}

	// The same student holding the seat is a conflict; any further seat
	// request hits the zero-capacity guard.
	if _, err := service.Enroll(ctx, fx.parentID, EnrollInput{
		StudentID:  fx.studentID,
		ScheduleID: fx.scheduleID,
		Processor:  models.ProcessorStripe,
	}); err != ErrConflict {
		t.Fatalf("expected ErrConflict for duplicate enrollment, got %v", err)
	}
}

func TestEnrollmentServicePayPalApproveAndCapture(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	redirect := &stubRedirectGateway{orderID: fmt.Sprintf("ORDER-%d", time.Now().UnixNano())}
	service := newIntegrationEnrollmentService(pool, nil, redirect)
	fx := createEnrollmentFixtures(t, ctx, pool, 5)

	detail, err := service.Enroll(ctx, fx.parentID, EnrollInput{
		StudentID:  fx.studentID,
		ScheduleID: fx.scheduleID,
		Processor:  models.ProcessorPayPal,
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	result, err := service.ProcessPayment(ctx, fx.parentID, models.RoleParent, detail.ID, ProcessPaymentInput{})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if result.ApprovalURL != "https://paypal.example/approve/"+redirect.orderID {
		t.Fatalf("expected approval url, got %q", result.ApprovalURL)
	}

	pending, err := service.Get(ctx, fx.parentID, models.RoleParent, detail.ID)
	if err != nil {
		t.Fatalf("Get after order: %v", err)
	}
	if pending.Status != models.EnrollmentStatusPendingPayment {
		t.Fatalf("expected pending_payment before capture, got %q", pending.Status)
	}

	if _, err := service.CapturePayment(ctx, fx.parentID, models.RoleParent, detail.ID, "WRONG-ORDER"); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for mismatched order id, got %v", err)
	}

	captured, err := service.CapturePayment(ctx, fx.parentID, models.RoleParent, detail.ID, redirect.orderID)
	if err != nil {
		t.Fatalf("CapturePayment: %v", err)
	}
	if captured.Status != models.EnrollmentStatusPaid {
		t.Fatalf("expected paid after capture, got %q", captured.Status)
	}
	if redirect.captured != redirect.orderID {
		t.Fatalf("expected capture of %s, got %s", redirect.orderID, redirect.captured)
	}
}
