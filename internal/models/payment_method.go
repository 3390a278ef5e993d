package models

import "time"

// PaymentMethod is a stored reference to a tokenized card. Only the opaque
// processor token and display metadata are persisted, never card numbers.
type PaymentMethod struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Processor string    `json:"processor"`
	Token     string    `json:"-"`
	Brand     string    `json:"brand"`
	Last4     string    `json:"last4"`
	ExpMonth  int       `json:"exp_month"`
	ExpYear   int       `json:"exp_year"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
