package models

import "time"

// OfferingKind discriminates the two structurally different offering shapes.
// Subscription offerings sell recurring plans; program offerings sell one-off
// programs. The kind is decided once, when the offering is stored, and every
// consumer branches on it instead of inspecting the offering name.
type OfferingKind string

const (
	OfferingKindSubscription OfferingKind = "subscription"
	OfferingKindProgram      OfferingKind = "program"
)

func IsValidOfferingKind(kind OfferingKind) bool {
	return kind == OfferingKindSubscription || kind == OfferingKindProgram
}

type Offering struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Kind        OfferingKind `json:"kind"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Plan is a recurring billing option under a subscription offering.
type Plan struct {
	ID            int64     `json:"id"`
	OfferingID    int64     `json:"offering_id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	MonthlyAmount float64   `json:"monthly_amount"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OfferingDetail carries the variant payload matching the offering kind:
// exactly one of Plans or Programs is populated.
type OfferingDetail struct {
	Offering
	Plans    []Plan    `json:"plans,omitempty"`
	Programs []Program `json:"programs,omitempty"`
}
