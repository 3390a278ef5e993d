package models

import "time"

// Enrollment statuses. An enrollment is created pending_payment and moves to
// paid on a successful charge or payment_failed on a gateway failure. A failed
// payment is retried against the same enrollment id; cancellation releases the
// schedule seat.
const (
	EnrollmentStatusPendingPayment = "pending_payment"
	EnrollmentStatusPaid           = "paid"
	EnrollmentStatusPaymentFailed  = "payment_failed"
	EnrollmentStatusCancelled      = "cancelled"
)

const (
	ProcessorStripe = "stripe"
	ProcessorPayPal = "paypal"
)

type Enrollment struct {
	ID               int64      `json:"id"`
	StudentID        int64      `json:"student_id"`
	ParentID         int64      `json:"parent_id"`
	ScheduleID       int64      `json:"schedule_id"`
	ProgramID        *int64     `json:"program_id,omitempty"`
	PlanID           *int64     `json:"plan_id,omitempty"`
	Status           string     `json:"status"`
	Processor        string     `json:"processor"`
	BaseAmount       float64    `json:"base_amount"`
	DiscountAmount   float64    `json:"discount_amount"`
	AdminFee         float64    `json:"admin_fee"`
	TaxAmount        float64    `json:"tax_amount"`
	TotalAmount      float64    `json:"total_amount"`
	AutoPayEnabled   bool       `json:"auto_pay_enabled"`
	DiscountCodeID   *int64     `json:"discount_code_id,omitempty"`
	SubscriptionID   *string    `json:"subscription_id,omitempty"`
	MonthlyAmount    *float64   `json:"monthly_amount,omitempty"`
	NextPaymentDueAt *time.Time `json:"next_payment_due_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsSubscription reports whether the enrollment bills monthly against a plan.
func (e *Enrollment) IsSubscription() bool {
	return e.PlanID != nil
}

// PaymentRecord is one entry in an enrollment's payment history.
type PaymentRecord struct {
	ID            int64     `json:"id"`
	EnrollmentID  int64     `json:"enrollment_id"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	Processor     string    `json:"processor"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type EnrollmentDetail struct {
	Enrollment
	Payments []PaymentRecord `json:"payments,omitempty"`
}

// EnrollmentSummary is a list row carrying the most recent payment, so the
// parent dashboard can show payment state without a per-row lookup.
type EnrollmentSummary struct {
	Enrollment
	LastPayment *PaymentRecord `json:"last_payment,omitempty"`
}
